package contact

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

// Info is the synthetic contact block printed on a resume header.
type Info struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// Generate returns contact details derived only from seed, so the same seed
// always yields the same person. A zero seed draws from a random source.
func Generate(seed uint64) Info {
	f := gofakeit.New(seed)
	return Info{
		Name:     f.Name(),
		Email:    f.Email(),
		Phone:    f.PhoneFormatted(),
		Location: fmt.Sprintf("%s, %s", f.City(), f.StateAbr()),
	}
}
