// Package simulator provides a Modbus/TCP DO device that runs in process.
//
// It is built on github.com/tbrandon/mbserver and serves read coils (1),
// write single coil (5) and write multiple coils (15). Every write is
// recorded and logged, which makes the device useful both for trying docon
// without hardware (docon simulate) and as the peer in package tests.
package simulator
