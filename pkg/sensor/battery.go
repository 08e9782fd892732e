package sensor

import (
	"context"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Battery reads one battery through the platform power-supply interface.
type Battery struct {
	index  int
	getAll func() ([]*battery.Battery, error)
}

// NewBattery returns a reader for the battery at index (0 for the first one).
func NewBattery(index int) *Battery {
	return &Battery{
		index:  index,
		getAll: battery.GetAll,
	}
}

// Sample implements Sampler.
func (b *Battery) Sample(_ context.Context) (BatterySnapshot, error) {
	batteries, err := b.getAll()
	if len(batteries) <= b.index {
		if err != nil {
			return BatterySnapshot{}, pkgerrors.Wrap(err, "failed to read batteries")
		}
		return BatterySnapshot{}, pkgerrors.Wrapf(ErrUnavailable, "no battery at index %d", b.index)
	}

	bat := batteries[b.index]
	if bat == nil || bat.Full <= 0 {
		if err == nil {
			err = pkgerrors.New("battery reported no capacity")
		}
		return BatterySnapshot{}, pkgerrors.Wrapf(err, "failed to read battery %d", b.index)
	}
	if err != nil {
		// Partial reads still carry the fields we need.
		logrus.WithError(err).Trace("partial battery read")
	}

	return snapshotFromBattery(bat), nil
}

func snapshotFromBattery(bat *battery.Battery) BatterySnapshot {
	percent := bat.Current / bat.Full * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	return BatterySnapshot{
		Percent:      percent,
		Charging:     bat.State != battery.Discharging,
		OnFullCharge: bat.State == battery.Full || bat.Current >= bat.Full,
	}
}

