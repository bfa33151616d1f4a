package service

import "errors"

var (
	errInvalidRecipient = errors.New("invalid recipient email")
	errUnknownEventKind = errors.New("unknown event kind")
	errMissingTimestamp = errors.New("missing event timestamp")
	errMissingEventID   = errors.New("missing provider event id")
)
