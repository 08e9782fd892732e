// Package hack holds files installed next to the binary.
package hack

import _ "embed"

// SystemdUserUnitTemplate is the systemd user unit. "/path/to/rootstatus"
// is replaced with the binary path on install.
//
//go:embed rootstatus.service
var SystemdUserUnitTemplate string
