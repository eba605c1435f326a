package csentry

import "testing"

func TestOptions_MessageSeverity(t *testing.T) {
	tests := []struct {
		opts Options
		want Severity
	}{
		{0, SeverityError},
		{LevelError, SeverityError},
		{LevelDebug, SeverityDebug},
		{LevelInfo, SeverityInfo},
		{LevelWarning, SeverityWarning},
		{LevelFatal, SeverityFatal},
		{LevelWarning | TypeHTTP, SeverityWarning},
		{Options(7 << levelShift), SeverityError},
	}

	for _, tt := range tests {
		if got := tt.opts.MessageSeverity(); got != tt.want {
			t.Errorf("Options(%#x).MessageSeverity() = %q, want %q", uint32(tt.opts), got, tt.want)
		}
	}
}

func TestOptions_BreadcrumbSeverity_SwapsDefault(t *testing.T) {
	tests := []struct {
		opts Options
		want Severity
	}{
		{0, SeverityInfo},
		{LevelInfo, SeverityError},
		{LevelDebug, SeverityDebug},
		{LevelWarning, SeverityWarning},
		{LevelFatal, SeverityFatal},
		{Options(6 << levelShift), SeverityInfo},
	}

	for _, tt := range tests {
		if got := tt.opts.BreadcrumbSeverity(); got != tt.want {
			t.Errorf("Options(%#x).BreadcrumbSeverity() = %q, want %q", uint32(tt.opts), got, tt.want)
		}
	}
}

func TestOptions_BreadcrumbType(t *testing.T) {
	tests := []struct {
		opts Options
		want BreadcrumbType
	}{
		{0, BreadcrumbDefault},
		{TypeHTTP, BreadcrumbHTTP},
		{TypeError | LevelFatal, BreadcrumbError},
		{Options(3 << typeShift), BreadcrumbDefault},
	}

	for _, tt := range tests {
		if got := tt.opts.BreadcrumbType(); got != tt.want {
			t.Errorf("Options(%#x).BreadcrumbType() = %q, want %q", uint32(tt.opts), got, tt.want)
		}
	}
}

func TestOptionsFor(t *testing.T) {
	for _, sev := range []Severity{SeverityError, SeverityDebug, SeverityInfo, SeverityWarning, SeverityFatal} {
		if got := OptionsFor(sev).MessageSeverity(); got != sev {
			t.Errorf("OptionsFor(%q).MessageSeverity() = %q", sev, got)
		}
	}
	if got := OptionsFor("bogus"); got != LevelError {
		t.Errorf("OptionsFor(bogus) = %#x, want LevelError", uint32(got))
	}
}
