package store

import (
	"fmt"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

func errInvalidRecord(kind model.Kind) error {
	return apperrors.InvalidInput(fmt.Sprintf("record for kind %q lacks a usable identifier", kind))
}

func errNotFound(kind model.Kind, id string) error {
	return apperrors.NotFoundWithID(string(kind), id)
}
