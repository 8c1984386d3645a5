package domain

import "fmt"

const cardNumberLen = 16

// ValidateCardNumber checks that a card number is exactly 16 digits.
func ValidateCardNumber(number string) error {
	if len(number) != cardNumberLen {
		return fmt.Errorf("card number must be %d digits", cardNumberLen)
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return fmt.Errorf("card number must be numeric")
		}
	}
	return nil
}

// MaskCardNumber renders the display form of a card number: all but the
// last four digits replaced. Numbers shorter than eight characters mask
// entirely.
func MaskCardNumber(number string) string {
	if len(number) < 8 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}
