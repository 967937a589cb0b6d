package shell

import "github.com/sirupsen/logrus"

// Logger is the package-level debug sink for internal diagnostics —
// failed setpgid race-proofing, terminal hand-off failures, wait errors. It is
// separate from the always-on "thrash: " stderr channel used for
// user-facing errors, which never goes through logrus.
var Logger = logrus.New()

func init() {
	Logger.SetLevel(logrus.WarnLevel)
}
