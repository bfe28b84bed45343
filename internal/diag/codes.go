package diag

// Code identifies diagnostics produced by the analyzer core itself
// (as opposed to findings reported by checkers, which carry their own IDs).
type Code uint16

const (
	UnknownCode Code = 0

	// ошибки ядра: конфигурация и ввод
	CoreConfiguration  Code = 1001
	CoreFileAccess     Code = 1002
	CoreTooManyConfigs Code = 1003
	CoreSyntax         Code = 1004

	// сбои чекеров
	CoreInternalChecker Code = 2001

	// минимизация и межмодульный проход
	CorePrecondition     Code = 3001
	CoreAlreadyFinalized Code = 3002
	CoreUnusedFunction   Code = 3003

	// Observability
	ObsTimings Code = 6001
)

var codeInfo = map[Code]struct {
	id    string
	title string
}{
	UnknownCode:          {"unknownError", "Unknown error"},
	CoreConfiguration:    {"configurationError", "Analyzer settings are missing or invalid"},
	CoreFileAccess:       {"fileAccessError", "Source unit could not be read"},
	CoreTooManyConfigs:   {"tooManyConfigs", "Configuration limit reached, remaining configurations skipped"},
	CoreSyntax:           {"syntaxError", "Configuration could not be tokenized"},
	CoreInternalChecker:  {"internalCheckerError", "A checker failed internally"},
	CorePrecondition:     {"preconditionError", "Input does not reproduce the requested diagnostic"},
	CoreAlreadyFinalized: {"alreadyFinalized", "Cross-unit analysis was already finalized"},
	CoreUnusedFunction:   {"unusedFunction", "Function is never used"},
	ObsTimings:           {"timings", "Phase timings"},
}

// ID returns the stable check identifier used in reports and suppressions.
func (c Code) ID() string {
	if info, ok := codeInfo[c]; ok {
		return info.id
	}
	return codeInfo[UnknownCode].id
}

func (c Code) Title() string {
	if info, ok := codeInfo[c]; ok {
		return info.title
	}
	return codeInfo[UnknownCode].title
}

func (c Code) String() string {
	return "[" + c.ID() + "]: " + c.Title()
}

// CoreCodes returns every core code in ascending order.
func CoreCodes() []Code {
	return []Code{
		CoreConfiguration,
		CoreFileAccess,
		CoreTooManyConfigs,
		CoreSyntax,
		CoreInternalChecker,
		CorePrecondition,
		CoreAlreadyFinalized,
		CoreUnusedFunction,
		ObsTimings,
	}
}
