package model

// Card is the host card emulation payment card a consumer pays with.
type Card struct {
	FirstName  string
	LastName   string
	ExpMonth   Optional[int32]
	ExpYear    Optional[int32]
	CardNumber string
	Type       string
	CVC        string
}

// Masked returns the card number with all but the last four digits hidden.
func (c Card) Masked() string {
	n := len(c.CardNumber)
	if n <= 4 {
		return c.CardNumber
	}
	masked := make([]byte, n)
	for i := 0; i < n-4; i++ {
		masked[i] = '*'
	}
	copy(masked[n-4:], c.CardNumber[n-4:])
	return string(masked)
}
