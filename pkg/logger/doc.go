// Package logger builds the application's slog.Logger with context-aware
// attribute injection.
//
// The factory wires a JSON or text handler, static service attributes, and a
// set of ContextExtractors. Extractors pull request-scoped correlation fields
// out of the context at log time (the tenancy and requestid packages each
// export one), so every record emitted inside a tenant binding automatically
// carries the tenant, member, and request id without explicit arguments:
//
//	log := logger.New(
//		logger.WithEnvironment(env, "tenantcore"),
//		logger.WithContextExtractors(
//			tenancy.LoggerExtractor(),
//			tenancy.MemberLoggerExtractor(),
//			requestid.LoggerExtractor(),
//		),
//	)
package logger
