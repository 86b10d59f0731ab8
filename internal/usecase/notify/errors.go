package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidAnnouncement is returned for a nil announcement or article.
	ErrInvalidAnnouncement = errors.New("invalid announcement")
)
