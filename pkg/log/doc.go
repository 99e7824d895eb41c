// Package log wraps the standard library logger with named component
// loggers and levels.
//
//	l := log.ForComponent("storage")
//	l.Infof("opened %s", path)
//	l.Debugf("query: %s", sql) // only printed when debug is on
//
// Every line carries the level and the component name:
//
//	2024/05/01 10:00:00.000000 INFO [storage] opened books.db
//
// Debug output can be enabled for all components (SetGlobalDebug) or for
// some of them (EnableDebugFor). SetColor styles the level tags when the
// output is a terminal. Tests capture output with SetOutput.
//
// The package name shadows the standard library; alias one of them when
// both are needed.
package log
