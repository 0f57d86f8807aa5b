package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.False(t, Name(""))
	assert.False(t, Name("J"))
	assert.True(t, Name("Jo"))
	assert.True(t, Name("Jane Doe"))
	// no trimming: two spaces count as two characters
	assert.True(t, Name("  "))
}

func TestEmail(t *testing.T) {
	valid := []string{
		"jane@x.com",
		"jane.doe+tag@sub.example.co",
		"a_b%c-d@host-name.io",
	}
	for _, s := range valid {
		assert.True(t, Email(s), "expected %q to pass", s)
	}

	invalid := []string{
		"",
		"jane",
		"jane@",
		"@x.com",
		"jane@x",
		"jane@x.c",
		"jane doe@x.com",
	}
	for _, s := range invalid {
		assert.False(t, Email(s), "expected %q to fail", s)
	}
}

func TestPhone(t *testing.T) {
	valid := []string{
		"2025550123",
		"+12025550123",
		"12025550123",
		"+120255501234567", // literal 1 plus 14 digits
	}
	for _, s := range valid {
		assert.True(t, Phone(s), "expected %q to pass", s)
	}

	invalid := []string{
		"",
		"202555012",       // 9 digits
		"+1202555012345678", // too many digits
		"20255501ab",
		"++12025550123",
	}
	for _, s := range invalid {
		assert.False(t, Phone(s), "expected %q to fail", s)
	}
}

func TestDate(t *testing.T) {
	assert.True(t, Date("30-04-2024"))
	assert.False(t, Date("31-04-2024"), "April has 30 days")
	assert.True(t, Date("29-02-2024"), "2024 is a leap year")
	assert.False(t, Date("29-02-2023"))
	assert.False(t, Date("00-01-2024"))
	assert.False(t, Date("01-13-2024"))
	assert.False(t, Date("1-1-2024"), "day and month must be two digits")
	assert.False(t, Date("01-01-24"), "year must have four digits")
	assert.False(t, Date("2024-01-01"))
	assert.True(t, Date("01-01-0001"), "no range restriction on year")
}

func TestEnum(t *testing.T) {
	choices := []string{"Beginner", "Intermediate", "Advanced"}

	got, ok := Enum("Intermediate", choices, true)
	assert.True(t, ok)
	assert.Equal(t, "Intermediate", got)

	_, ok = Enum("intermediate", choices, true)
	assert.False(t, ok, "case-sensitive comparison must reject wrong case")

	got, ok = Enum("intermediate", choices, false)
	assert.True(t, ok)
	assert.Equal(t, "Intermediate", got, "folded match returns the canonical choice")

	_, ok = Enum("Expert", choices, false)
	assert.False(t, ok)
}

func TestCount(t *testing.T) {
	for input, want := range map[string]bool{
		"0":   false,
		"1":   true,
		"10":  true,
		"11":  false,
		"-1":  false,
		"abc": false,
		"":    false,
		"2.5": false,
	} {
		_, ok := Count(input, 1, 10)
		assert.Equal(t, want, ok, "Count(%q, 1, 10)", input)
	}

	n, ok := Count("7", 1, 10)
	assert.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestYesNo(t *testing.T) {
	for input, want := range map[string]bool{
		"yes": true, "YES": true, "y": true, "Y": true,
		"no": false, "No": false, "n": false, "N": false,
	} {
		got, ok := YesNo(input)
		assert.True(t, ok, "YesNo(%q)", input)
		assert.Equal(t, want, got, "YesNo(%q)", input)
	}

	for _, input := range []string{"", "maybe", "yess", "nope"} {
		_, ok := YesNo(input)
		assert.False(t, ok, "YesNo(%q) should not match", input)
	}
}
