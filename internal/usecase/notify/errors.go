package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrNoMovies is returned when there is nothing to announce.
	ErrNoMovies = errors.New("no movies to notify")
)
