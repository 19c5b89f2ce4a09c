package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldBackend   = "backend"
	FieldKey       = "key"
	FieldDate      = "date"
	FieldShift     = "shift"
	FieldEmployee  = "employee"
	FieldTotal     = "total"
	FieldWeek      = "week"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentStore    = "store"
	ComponentLedger   = "ledger"
	ComponentRegister = "register"
	ComponentSnapshot = "snapshot"
	ComponentFlusher  = "flusher"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpLoad     = "load"
	OpRecover  = "recover"
	OpPrune    = "prune"
	OpExport   = "export"
	OpImport   = "import"
	OpFlush    = "flush"
	OpClear    = "clear"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
