package main

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/systray"

	"github.com/marcus-crane/tunestatus/config"
	"github.com/marcus-crane/tunestatus/menubar"
	"github.com/marcus-crane/tunestatus/playback"
)

const marqueeInterval = 300 * time.Millisecond

// runTray blocks on the main thread until the user quits or ctx ends.
func runTray(ctx context.Context, quit context.CancelFunc, app *App) {
	systray.Run(func() { onTrayReady(ctx, app) }, quit)
}

func onTrayReady(ctx context.Context, app *App) {
	settings := app.settings
	systray.SetTitle("♫")
	systray.SetTooltip("TuneStatus")

	nowPlaying := systray.AddMenuItem("Nothing playing", "")
	nowPlaying.Disable()
	systray.AddSeparator()
	mPlayPause := systray.AddMenuItem("Play/Pause", "")
	mPrevious := systray.AddMenuItem("Previous", "")
	mNext := systray.AddMenuItem("Next", "")
	mActivate := systray.AddMenuItem("Open Player", "")
	systray.AddSeparator()
	mArtist := systray.AddMenuItemCheckbox("Show Artist", "", settings.MenuBar.ShowArtist)
	mAlbum := systray.AddMenuItemCheckbox("Show Album", "", settings.MenuBar.ShowAlbum)
	if !settings.MenuBar.ShowArtist {
		mAlbum.Disable()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "")

	entries, cancel := app.player.Subscribe(1)
	marquee := menubar.NewMarquee(settings.MenuBar.MaxWidth)
	current := app.player.Current()

	render := func() {
		marquee.Set(menubar.Title(current, settings.MenuBar))
		systray.SetTitle(marquee.Frame())
		systray.SetTooltip(menubar.Truncate(menubar.Title(current, config.MenuBarSettings{ShowArtist: true, ShowAlbum: true}), 120))
		nowPlaying.SetTitle(nowPlayingLabel(current))
	}
	render()

	control := func(name string, fn func(context.Context) error) {
		go func() {
			if err := fn(ctx); err != nil {
				slog.Debug("Tray control failed", slog.String("command", name), slog.String("error", err.Error()))
			}
		}()
	}

	saveSettings := func() {
		if err := settings.WriteSettingsFile(config.SettingsPath()); err != nil {
			slog.Warn("Failed to save settings", slog.String("error", err.Error()))
		}
	}

	go func() {
		defer cancel()
		ticker := time.NewTicker(marqueeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				systray.Quit()
				return
			case e, ok := <-entries:
				if !ok {
					return
				}
				current = e
				render()
			case <-ticker.C:
				if marquee.Scrolling() {
					systray.SetTitle(marquee.Frame())
				}
			case <-mPlayPause.ClickedCh:
				control("playpause", app.player.PlayPause)
			case <-mPrevious.ClickedCh:
				control("previous", app.player.Previous)
			case <-mNext.ClickedCh:
				control("next", app.player.Next)
			case <-mActivate.ClickedCh:
				control("activate", app.player.Activate)
			case <-mArtist.ClickedCh:
				if settings.ToggleArtist() {
					mArtist.Check()
					mAlbum.Enable()
				} else {
					mArtist.Uncheck()
					mAlbum.Uncheck()
					mAlbum.Disable()
				}
				saveSettings()
				render()
			case <-mAlbum.ClickedCh:
				if settings.ToggleAlbum() {
					mAlbum.Check()
				} else {
					mAlbum.Uncheck()
				}
				saveSettings()
				render()
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func nowPlayingLabel(e playback.Entry) string {
	if !e.HasTrack() {
		return "Nothing playing"
	}
	return menubar.Truncate(e.TrackName, 48)
}
