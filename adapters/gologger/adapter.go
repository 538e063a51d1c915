package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Root is the logger name every messenger component hangs under.
const Root = "messenger"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ComponentName returns "messenger.<component>", or just "messenger" when
// component is blank.
func ComponentName(component string) string {
	component = strings.Trim(strings.TrimSpace(component), ".")
	if component == "" {
		return Root
	}
	return Root + "." + component
}

// ResolveComponent resolves the logger for one messenger component, such as
// "client" or "webhooks". The result is never nil.
func ResolveComponent(
	component string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger) {
	resolvedProvider, resolvedLogger := Resolve(ComponentName(component), provider, logger)
	return resolvedProvider, glog.Ensure(resolvedLogger)
}
