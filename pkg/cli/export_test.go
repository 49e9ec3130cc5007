package cli

var (
	IndexConfig           = indexConfig
	PrintSyncResult       = printSyncResult
	PrintSingleSyncResult = printSingleSyncResult
)
