/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package swiss

import "errors"

// All engine errors are fatal for the round being computed; callers should not
// advance the round and should surface the error to an operator.
var (
	// inputs reference unknown participants or carry malformed history
	ErrDataIntegrity = errors.New("data integrity violation")

	// pairing could not complete after the float/relaxation procedure
	ErrUnpairablePool = errors.New("unpairable pool")

	// unknown tiebreak kind or non-monotonic point values
	ErrConfiguration = errors.New("invalid configuration")
)
