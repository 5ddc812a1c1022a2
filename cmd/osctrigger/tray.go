package main

import (
	"fmt"
	"time"

	"github.com/getlantern/systray"

	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/listener"
)

const trayRefresh = 250 * time.Millisecond

// runTray blocks on the systray event loop. The listener is started right
// away and can be stopped and restarted from the menu.
func runTray(ctrl *listener.Controller, cfg *config.Config) {
	onReady := func() {
		systray.SetTitle("OSC")
		systray.SetTooltip(fmt.Sprintf("osctrigger: %s = %g", cfg.TargetAddress, cfg.TargetValue))

		mStatus := systray.AddMenuItem("Stopped", "Listener status")
		mStatus.Disable()
		systray.AddSeparator()
		mStart := systray.AddMenuItem("Start", "Bind and listen")
		mStop := systray.AddMenuItem("Stop", "Stop listening")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Quit osctrigger")

		refresh := func() {
			mStatus.SetTitle(statusText(ctrl))
			if ctrl.Running() {
				mStart.Disable()
				mStop.Enable()
			} else {
				mStart.Enable()
				mStop.Disable()
			}
		}

		ctrl.Start(*cfg)
		refresh()

		go func() {
			ticker := time.NewTicker(trayRefresh)
			defer ticker.Stop()
			for {
				select {
				case <-mStart.ClickedCh:
					ctrl.Start(*cfg)
				case <-mStop.ClickedCh:
					ctrl.Stop()
					ctrl.Wait()
				case <-ticker.C:
				case <-mQuit.ClickedCh:
					systray.Quit()
					return
				}
				refresh()
			}
		}()
	}

	onExit := func() {
		ctrl.Stop()
		ctrl.Wait()
	}

	systray.Run(onReady, onExit)
}

// statusText is the one-line state shown in the tray menu.
func statusText(ctrl *listener.Controller) string {
	s := ctrl.Session()
	switch {
	case ctrl.Err() != nil && (s == nil || !s.Running()):
		return fmt.Sprintf("Start failed: %v", ctrl.Err())
	case s == nil:
		return "Stopped"
	case s.Running():
		return fmt.Sprintf("Listening on %s", s.LocalAddr())
	case s.Fires() > 0:
		return fmt.Sprintf("Fired %d time(s), stopped", s.Fires())
	default:
		return "Stopped"
	}
}
