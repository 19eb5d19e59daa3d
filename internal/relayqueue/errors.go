package relayqueue

import "errors"

var ErrMalformedMember = errors.New("relayqueue: queue member is not a JSON string")
