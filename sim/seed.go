package sim

// SubSeed derives an independent seed for stream i of a master seed using
// the splitmix64 finalizer. Trials use their index as the stream, so a
// trial's draws do not depend on which worker runs it.
func SubSeed(master, stream uint64) uint64 {
	z := master + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
