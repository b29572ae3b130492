package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (E100-E119)

	"E100": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create spa.json or pass --config with the path to one",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check that spa.json is valid JSON",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The port must be between 0 and 65535.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "An SPA_* or PORT environment variable could not be parsed.",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Unknown report store",
		Detail:     "reports.store must be one of memory, disk, s3 or postgres.",
		Suggestion: "Set reports.store in spa.json or SPA_REPORT_STORE",
	},

	// Server (E120-E139)

	"E120": {
		Category:   CategoryServer,
		Message:    "Distribution directory not found",
		Detail:     "The server serves the built frontend from <dist>/frontend.",
		Suggestion: "Build the frontend or set DIST_PATH",
	},
	"E121": {
		Category: CategoryServer,
		Message:  "index.html not found",
		Detail:   "Every SPA route is answered with <dist>/frontend/index.html.",
	},
	"E122": {
		Category: CategoryServer,
		Message:  "Server failed",
	},
	"E123": {
		Category: CategoryReports,
		Message:  "Report store unavailable",
		Detail:   "The configured error report store could not be opened.",
	},

	// Routing (E140-E159)

	"E140": {
		Category: CategoryRouting,
		Message:  "Invalid route table",
		Detail:   "A route pattern could not be compiled.",
	},

	// Dependency checks (E160-E179)

	"E160": {
		Category:   CategoryDeps,
		Message:    "Module file not found",
		Suggestion: "Run the check from the module root or pass -m path/to/go.mod",
	},
	"E161": {
		Category: CategoryDeps,
		Message:  "Cannot parse module file",
	},
	"E162": {
		Category: CategoryDeps,
		Message:  "Cannot parse source file",
	},
	"E164": {
		Category: CategoryDeps,
		Message:  "Directory not found",
	},
	"E163": {
		Category:   CategoryDeps,
		Message:    "Missing dependencies",
		Detail:     "Some imported modules are not declared as requirements.",
		Suggestion: "Add them with 'go get'",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
