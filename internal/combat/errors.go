package combat

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

func entityNotFound(entityID string) error {
	return apperrors.WithMetadata(apperrors.CodeEntityNotFound,
		fmt.Sprintf("entity %q not found", entityID), map[string]string{"EntityID": entityID})
}

func malformed(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeSnapshotMalformed,
		"malformed encounter: "+reason, map[string]string{"Reason": reason})
}

func negativeAmount(amount int) error {
	return apperrors.WithMetadata(apperrors.CodeAmountNegative,
		fmt.Sprintf("amount %d is negative", amount), map[string]string{"Amount": strconv.Itoa(amount)})
}

func outOfRange(distance float64, reach int) error {
	feet := strconv.Itoa(int(distance + 0.5))
	return apperrors.WithMetadata(apperrors.CodeTargetOutOfRange,
		fmt.Sprintf("target is %s ft away, range is %d ft", feet, reach),
		map[string]string{"Distance": feet, "Range": strconv.Itoa(reach)})
}
