package liveness

// NewCheckerWithHost creates a Checker that reports host as the local host name.
func NewCheckerWithHost(host string, pid int) *Checker {
	return &Checker{
		hostname: func() (string, error) { return host, nil },
		pid:      pid,
	}
}
