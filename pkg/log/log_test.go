package log

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForComponent(name), buf
}

func TestInfoIncludesLevelAndComponent(t *testing.T) {
	SetGlobalDebug(false)
	SetColor(false)

	l, buf := newTestLogger(t, "info_component_test")
	l.Infof("opened %s", "books.db")
	out := buf.String()

	if !strings.Contains(out, "INFO [info_component_test] opened books.db") {
		t.Fatalf("expected level, component and message in output, got: %q", out)
	}
}

func TestForComponentMemoized(t *testing.T) {
	if ForComponent("memo_test") != ForComponent("memo_test") {
		t.Fatal("expected the same logger for the same component")
	}
	if ForComponent("") != ForComponent("main") {
		t.Fatal("expected empty component name to map to main")
	}
}

func TestDebugPerComponent(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_component_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug message appeared while debug disabled")
	}

	EnableDebugFor(name)
	defer DisableDebugFor(name)
	l.Debugf("visible now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("expected debug message after enabling component debug; got: %q", buf.String())
	}
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_component_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug message appeared while global debug disabled")
	}

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "DEBUG [debug_component_global] global visible") {
		t.Fatalf("expected debug message after enabling global debug; got: %q", buf.String())
	}
}

func TestSetOutputUpdatesExistingLoggers(t *testing.T) {
	l := ForComponent("output_switch_test")

	first := &bytes.Buffer{}
	SetOutput(first)
	l.Warnf("first")

	second := &bytes.Buffer{}
	SetOutput(second)
	l.Errorf("second")

	if !strings.Contains(first.String(), "WARN [output_switch_test] first") {
		t.Errorf("expected warning in first buffer, got: %q", first.String())
	}
	if strings.Contains(first.String(), "second") {
		t.Errorf("expected second message not to reach first buffer")
	}
	if !strings.Contains(second.String(), "ERROR [output_switch_test] second") {
		t.Errorf("expected error in second buffer, got: %q", second.String())
	}
}
