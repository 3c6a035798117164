package claimcheck

import "github.com/azsbx/extended-client/pkg/errors"

func errorHasCode(err error, code string) bool {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
