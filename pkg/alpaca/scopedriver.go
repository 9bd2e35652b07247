package alpaca

// GetAltAz reads back the mount's currently reported altitude and
// azimuth, satisfying tracking.ScopeDriver.
func (c *TelescopeClient) GetAltAz() (alt, az float64, err error) {
	status, err := c.GetStatus()
	if err != nil {
		return 0, 0, err
	}
	return status.Altitude, status.Azimuth, nil
}

// GetRADec reads back the mount's currently reported apparent right
// ascension and declination, satisfying trackable.RADecSource — used
// to track a celestial target already centered on a reference scope.
func (c *TelescopeClient) GetRADec() (ra, dec float64, err error) {
	status, err := c.GetStatus()
	if err != nil {
		return 0, 0, err
	}
	// Alpaca reports right ascension in hours; the celestial
	// transformer works in degrees throughout.
	return status.RightAscension * 15.0, status.Declination, nil
}
