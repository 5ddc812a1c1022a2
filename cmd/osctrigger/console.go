package main

import (
	"errors"
	"os"

	"github.com/eiannone/keyboard"

	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/listener"
	"github.com/showcontroller/osctrigger/logging"
)

type command int

const (
	cmdNone command = iota
	cmdStart
	cmdStop
	cmdQuit
)

func consoleCommand(char rune, key keyboard.Key) command {
	switch key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return cmdQuit
	}
	switch char {
	case 's', 'S':
		return cmdStart
	case 'x', 'X':
		return cmdStop
	case 'q', 'Q':
		return cmdQuit
	}
	return cmdNone
}

type keyPress struct {
	char rune
	key  keyboard.Key
}

// pumpKeys forwards key presses until read fails or done is closed. On a
// read error presses is closed. A read already blocked when done closes
// returns at the next key press.
func pumpKeys(read func() (rune, keyboard.Key, error), presses chan<- keyPress, done <-chan struct{}) error {
	for {
		char, key, err := read()
		if err != nil {
			close(presses)
			select {
			case <-done:
				return nil
			default:
				return err
			}
		}
		select {
		case presses <- keyPress{char, key}:
		case <-done:
			return nil
		}
	}
}

// runConsole puts the terminal in raw mode and maps key presses to
// Start/Stop until q, Esc or a signal. It returns an error only when the
// terminal cannot be opened.
func runConsole(ctrl *listener.Controller, cfg *config.Config, sigs <-chan os.Signal) error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()

	log := logging.Get(logging.APP)
	log.Info("Console control: s = start, x = stop, q/Esc = quit")

	presses := make(chan keyPress)
	done := make(chan struct{})
	defer close(done)
	go func() {
		if err := pumpKeys(keyboard.GetKey, presses, done); err != nil {
			log.Warn("Console read failed", "err", err)
		}
	}()

	defer func() {
		ctrl.Stop()
		ctrl.Wait()
	}()
	for {
		select {
		case <-sigs:
			return nil
		case p, ok := <-presses:
			if !ok {
				return nil
			}
			switch consoleCommand(p.char, p.key) {
			case cmdStart:
				if err := ctrl.Start(*cfg); errors.Is(err, listener.ErrAlreadyRunning) {
					log.Info("Already listening")
				}
			case cmdStop:
				if ctrl.Running() {
					ctrl.Stop()
					ctrl.Wait()
				}
			case cmdQuit:
				return nil
			}
		}
	}
}
