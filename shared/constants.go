package shared

const (
	APP_NAME = "tunestatus"

	APP_MUSIC   = "Music"
	APP_SPOTIFY = "Spotify"

	NOTIFICATION_MUSIC   = "com.apple.iTunes.playerInfo"
	NOTIFICATION_SPOTIFY = "com.spotify.client.PlaybackStateChanged"

	PLAYER_STATE_PLAYING = "Playing"
	PLAYER_STATE_PAUSED  = "Paused"
	PLAYER_STATE_STOPPED = "Stopped"

	SENTINEL_VALUE = "None"

	SNAPSHOT_BUCKET = "nowplaying"
	SNAPSHOT_KEY    = "snapshot"

	STREAM_PLAYBACK = "playback"

	USER_AGENT = "TuneStatus/1.0 <github.com/marcus-crane/tunestatus>"
)
