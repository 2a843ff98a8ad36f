package expire_holds

import "errors"

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("expire_holds: internal error")
