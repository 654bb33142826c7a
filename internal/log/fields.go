package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldFile      = "file"
	FieldLine      = "line"
	FieldDate      = "date"
	FieldPart      = "part"
	FieldBackend   = "backend"
	FieldEvent     = "event"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentImport  = "import"
	ComponentStorage = "storage"
	ComponentOutlook = "outlook"
	ComponentWatch   = "watch"
	ComponentEditor  = "editor"
)
