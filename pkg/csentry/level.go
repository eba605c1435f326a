// level.go decodes the packed level and breadcrumb type bits passed to
// CaptureMessage and AddBreadcrumb.

package csentry

// Options packs a level and a breadcrumb type into one word. Bits 29-31 hold
// the level index and bits 27-28 hold the type index. The zero value means
// "error" for messages and "info" for breadcrumbs.
type Options uint32

const (
	levelShift = 29
	typeShift  = 27
	typeMask   = 0x3
)

// Level bits.
const (
	LevelError   Options = 0 << levelShift
	LevelDebug   Options = 1 << levelShift
	LevelInfo    Options = 2 << levelShift
	LevelWarning Options = 3 << levelShift
	LevelFatal   Options = 4 << levelShift
)

// Breadcrumb type bits. Ignored by CaptureMessage.
const (
	TypeDefault Options = 0 << typeShift
	TypeHTTP    Options = 1 << typeShift
	TypeError   Options = 2 << typeShift
)

// Severity is the textual level written into events and breadcrumbs.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityDebug   Severity = "debug"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// BreadcrumbType is the textual breadcrumb type.
type BreadcrumbType string

const (
	BreadcrumbDefault BreadcrumbType = "default"
	BreadcrumbHTTP    BreadcrumbType = "http"
	BreadcrumbError   BreadcrumbType = "error"
)

var severities = [...]Severity{
	SeverityError,
	SeverityDebug,
	SeverityInfo,
	SeverityWarning,
	SeverityFatal,
}

var breadcrumbTypes = [...]BreadcrumbType{
	BreadcrumbDefault,
	BreadcrumbHTTP,
	BreadcrumbError,
}

func (o Options) levelIndex() int {
	return int(uint32(o) >> levelShift)
}

// MessageSeverity returns the event level encoded in o. Out of range
// indexes fall back to error.
func (o Options) MessageSeverity() Severity {
	i := o.levelIndex()
	if i >= len(severities) {
		return SeverityError
	}
	return severities[i]
}

// BreadcrumbSeverity returns the breadcrumb level encoded in o. Indexes 0 and
// 2 are swapped so that zero options produce "info".
func (o Options) BreadcrumbSeverity() Severity {
	i := o.levelIndex()
	switch i {
	case 0:
		i = 2
	case 2:
		i = 0
	}
	if i >= len(severities) {
		return SeverityInfo
	}
	return severities[i]
}

// BreadcrumbType returns the breadcrumb type encoded in o. The unused
// index 3 falls back to default.
func (o Options) BreadcrumbType() BreadcrumbType {
	i := int(uint32(o)>>typeShift) & typeMask
	if i >= len(breadcrumbTypes) {
		return BreadcrumbDefault
	}
	return breadcrumbTypes[i]
}

// OptionsFor returns the level bits for a severity name. Unknown names map
// to LevelError.
func OptionsFor(s Severity) Options {
	for i, sev := range severities {
		if sev == s {
			return Options(uint32(i) << levelShift)
		}
	}
	return LevelError
}
