package metrics

// Core metrics from CheekAI taxonomy
const (
	SchemaValidations          = "schema_validations"
	SchemaValidationErrors     = "schema_validation_errors"
	ConfigLoadMs               = "config_load_ms"
	ConfigLoadErrors           = "config_load_errors"
	PathfinderFindMs           = "pathfinder_find_ms"
	PathfinderValidationErrors = "pathfinder_validation_errors"
	PathfinderSecurityWarnings = "pathfinder_security_warnings"
	FoundryLookupCount         = "foundry_lookup_count"
	LoggingEmitCount           = "logging_emit_count"
	LoggingEmitLatencyMs       = "logging_emit_latency_ms"
	GoneatCommandDurationMs    = "goneat_command_duration_ms"
	FulHashHashCount           = "fulhash_hash_count"
	FulHashErrorsCount         = "fulhash_errors_count"
)

// Prometheus Exporter Metrics (CheekAI v0.2.7 taxonomy)
const (
	PrometheusExporterRefreshDurationSeconds = "prometheus_exporter_refresh_duration_seconds"
	PrometheusExporterRefreshTotal           = "prometheus_exporter_refresh_total"
	PrometheusExporterRefreshErrorsTotal     = "prometheus_exporter_refresh_errors_total"
	PrometheusExporterRefreshInflight        = "prometheus_exporter_refresh_inflight"
	PrometheusExporterHTTPRequestsTotal      = "prometheus_exporter_http_requests_total"
	PrometheusExporterHTTPErrorsTotal        = "prometheus_exporter_http_errors_total"
	PrometheusExporterRestartsTotal          = "prometheus_exporter_restarts_total"
)

// Error Handling Module Metrics
const (
	ErrorHandlingWrapsTotal = "error_handling_wraps_total"
	ErrorHandlingWrapMs     = "error_handling_wrap_ms"
)

// FulHash Module Metrics
const (
	FulHashOperationsTotalXXH3128 = "fulhash_operations_total_xxh3_128"
	FulHashOperationsTotalSHA256  = "fulhash_operations_total_sha256"
	FulHashHashStringTotal        = "fulhash_hash_string_total"
	FulHashBytesHashedTotal       = "fulhash_bytes_hashed_total"
	FulHashOperationMs            = "fulhash_operation_ms"
)

// Metric units
const (
	UnitCount   = "count"
	UnitMs      = "ms"
	UnitSeconds = "seconds"
	UnitBytes   = "bytes"
	UnitPercent = "percent"
)

// Standard tag keys
const (
	TagStatus    = "status"
	TagComponent = "component"
	TagOperation = "operation"
	TagCategory  = "category"
	TagVersion   = "version"
	TagSeverity  = "severity"
	TagLayer     = "layer"
	TagRoot      = "root"
	TagEndpoint  = "endpoint"
	TagHost      = "host"
	TagAlgorithm = "algorithm"
	TagErrorType = "error_type"
	TagPhase     = "phase"
	TagResult    = "result"
	TagReason    = "reason"
	TagPath      = "path"
	TagClient    = "client"
	TagMimeType  = "mime_type"
)

// Standard tag values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusError   = "error"
)

// Prometheus exporter phase values
const (
	PhaseCollect = "collect"
	PhaseConvert = "convert"
	PhaseExport  = "export"
)

// Prometheus exporter result values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Prometheus exporter error types
const (
	ErrorTypeValidation = "validation"
	ErrorTypeIO         = "io"
	ErrorTypeTimeout    = "timeout"
	ErrorTypeOther      = "other"
)

// Prometheus exporter restart reasons
const (
	RestartReasonConfig       = "config"
	RestartReasonPanicRecover = "panic_recover"
	RestartReasonManual       = "manual"
	RestartReasonDependency   = "dependency"
)

// Detection pipeline metrics (normalize, segment, scoring, llmscore, aggregate, dualmode, detect)
const (
	NormalizeDurationMs     = "normalize_duration_ms"
	SegmentParagraphsTotal  = "segment_paragraphs_total"
	SegmentSentencesTotal   = "segment_sentences_total"
	SegmentDurationMs       = "segment_duration_ms"
	SegmentServiceFallbacks = "segment_service_fallbacks_total"
	ScoringBlocksTotal      = "scoring_blocks_total"
	ScoringDurationMs       = "scoring_duration_ms"
	LLMCallsTotal           = "llm_calls_total"
	LLMCallDurationMs       = "llm_call_duration_ms"
	LLMRetriesTotal         = "llm_retries_total"
	LLMFallbacksTotal       = "llm_fallbacks_total"
	AggregateDurationMs     = "aggregate_duration_ms"
	DualModeDurationMs      = "dualmode_duration_ms"
	DetectRequestsTotal     = "detect_requests_total"
	DetectBusyRejectsTotal  = "detect_busy_rejects_total"
	DetectDurationMs        = "detect_duration_ms"
)

// Detection pipeline tag keys and values
const (
	TagPass      = "pass" // tag key: which pass emitted this metric
	TagProvider  = "provider"
	TagSegmenter = "segmenter"

	TagParagraphPass = "paragraph" // tag value for TagPass
	TagSentencePass  = "sentence"  // tag value for TagPass
)
