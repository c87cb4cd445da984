package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Minsk")
	if err != nil {
		panic(err)
	}
}

// force timezone to be Minsk because the portal renders every date and
// relative phrase in Belarusian local time, so resolving them with the
// host's own zone shifts journal dates across midnight
func Now() time.Time {
	return time.Now().In(Location)
}
