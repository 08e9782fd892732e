package daemon

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Uninstall stops the user unit and removes it.
func Uninstall() error {
	unitPath, err := UnitPath()
	if err != nil {
		return err
	}

	// if the file doesn't exist, there is nothing to stop
	if _, err := os.Stat(unitPath); err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("%s does not exist, nothing to uninstall", unitPath)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", unitPath, err)
	}

	logrus.Infof("stopping rootstatus")
	if err := systemctl("disable", "--now", unitName); err != nil {
		return err
	}

	logrus.Infof("removing systemd user unit")
	if err := os.Remove(unitPath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", unitPath, err)
	}

	return systemctl("daemon-reload")
}
