package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisworks/tenantcore/pkg/logger"
)

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	log.Info("boom",
		logger.Error(errors.New("db down")),
		logger.Component("worker"),
		logger.Event("invoice.issued"),
		logger.OrgID("org_42"),
		logger.Schema("tenant_0123456789ab"),
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "db down", record["error"])
	assert.Equal(t, "worker", record["component"])
	assert.Equal(t, "invoice.issued", record["event"])
	assert.Equal(t, "org_42", record["org_id"])
	assert.Equal(t, "tenant_0123456789ab", record["schema"])
}

func TestAttrHelpers_EmptyValues(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Error(nil).Equal(logger.OrgID("")))
	assert.True(t, logger.Schema("").Equal(logger.OrgID("")))
}
