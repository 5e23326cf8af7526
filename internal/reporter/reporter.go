package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Detection(summary DetectionSummary)
	Initialization(summary InitializationSummary)
	EncodingConfig(summary EncodingConfigSummary)
	ConversionStarted()
	ConversionProgress(progress ProgressSnapshot)
	ConversionComplete(summary ConversionSummary)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Detection(DetectionSummary)           {}
func (NullReporter) Initialization(InitializationSummary) {}
func (NullReporter) EncodingConfig(EncodingConfigSummary) {}
func (NullReporter) ConversionStarted()                   {}
func (NullReporter) ConversionProgress(ProgressSnapshot)  {}
func (NullReporter) ConversionComplete(ConversionSummary) {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}
