package payment

import "errors"

var ErrSessionFailed = errors.New("payment session creation failed")
