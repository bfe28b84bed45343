// Package fuzztests houses Go fuzz harnesses for the per-unit pipeline
// (expander -> lexer -> checkers -> sink). They guard against panics and
// broken invariants on arbitrary input.
//
// Назначение: прогонять произвольные байты через Configurations,
// ExpandConfig, Tokenize и Engine.CheckContent.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
