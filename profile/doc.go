// Package profile captures runtime profiles around a unit of work.
//
// A [Config] selects which pprof profiles to collect and where to write them.
// Register its flags with [Config.RegisterFlags], then wrap the work in a
// [Session]:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//
//	s, err := cfg.NewSession()
//	if err != nil {
//	    return err
//	}
//
//	err = s.Start()
//	if err != nil {
//	    return err
//	}
//
//	runWork()
//
//	paths, err := s.Stop()
//
// The mutex and block profiles are the useful ones for measuring contention
// on a shared dispatcher.
package profile
