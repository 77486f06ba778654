// Package console implements the interactive DO console.
//
// The command set is that of the classic DO control console:
//
//	on <1|2>              switch a DO on (polarity applied)
//	off <1|2>             switch a DO off
//	pulse <1|2> <ms>      pulse a DO
//	inv <1|2>             toggle polarity and save
//	map <ch> <coil>       map a DO to a coil and save
//	cfg <ip> [port] [uid] set the device address, save and reconnect
//	status [1|2]          coil snapshot and settings
//	showcfg               settings as JSON
//	help, exit, quit
//
// Shell parses and runs single lines. On a terminal RunTUI wraps it in a
// Bubble Tea program with history and a spinner while a command blocks;
// otherwise RunLines reads commands from a plain stream. A failing command
// prints one line and the console keeps going.
package console
