package streak

import (
	"github.com/brushy-app/brushy_api/model"
	"golang.org/x/crypto/bcrypt"
)

// PinLength is the number of digits in a parent PIN.
const PinLength = 6

// PinHashCost is the bcrypt cost used for parent PINs.
var PinHashCost = bcrypt.DefaultCost

// ValidPin reports whether pin is exactly six ASCII digits.
func ValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// SetParentPin stores a bcrypt hash of pin and marks the PIN as set.
func SetParentPin(p *model.UserProgress, pin string) error {
	if !ValidPin(pin) {
		return ErrInvalidPin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), PinHashCost)
	if err != nil {
		return err
	}

	p.ParentPin = string(hash)
	p.IsPinSet = true
	return nil
}

// CheckParentPin reports whether candidate matches the stored PIN. It is
// always false while no PIN has been set.
func CheckParentPin(p *model.UserProgress, candidate string) bool {
	if !p.IsPinSet || p.ParentPin == "" || !ValidPin(candidate) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.ParentPin), []byte(candidate)) == nil
}
