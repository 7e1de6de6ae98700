// Package validate implements the per-field parsers of the intake survey.
// Each validator is a pure function from raw message text to an explicit
// accepted/rejected Result, so the dialogue controller never sees a panic
// or an exception-shaped control flow.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// #region helpers

// cleanSpaces collapses all runs of whitespace into single spaces and trims.
func cleanSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// title upper-cases the first rune and lower-cases the rest.
func title(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Capitalize upper-cases the first rune, leaving the rest untouched.
// Used for pet names and branch free-text values.
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// #endregion helpers

// #region owner-name

// OwnerName normalizes a full name: strips control characters, the formula
// injection symbols = and +, and apostrophes; hyphens not joining two letters
// become spaces. Each whitespace token is capitalized; hyphen-joined surnames
// capitalize every sub-token and keep the hyphen.
func OwnerName(text string, _ time.Time) Result {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsControl(r):
		case r == '=' || r == '+' || r == '\'' || r == '’':
		case r == '-':
			prevLetter := i > 0 && unicode.IsLetter(runes[i-1])
			nextLetter := i+1 < len(runes) && unicode.IsLetter(runes[i+1])
			if prevLetter && nextLetter {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		default:
			b.WriteRune(r)
		}
	}

	cleaned := cleanSpaces(b.String())
	if len([]rune(cleaned)) < 3 || !containsLetter(cleaned) {
		return Reject("🟡 Введите фамилию, имя и отчество полностью.")
	}

	tokens := strings.Fields(cleaned)
	for i, tok := range tokens {
		parts := strings.Split(tok, "-")
		for j, p := range parts {
			parts[j] = title(p)
		}
		tokens[i] = strings.Join(parts, "-")
	}
	return Accept(strings.Join(tokens, " "))
}

// #endregion owner-name

// #region phone

// Phone normalizes a Russian phone number to +7XXXXXXXXXX.
// Accepts 10 digits (7 prepended) and 11 digits with a leading 8 or 9
// (rewritten to 7). The operator code 000 is a placeholder and is rejected.
func Phone(text string, _ time.Time) Result {
	var digits []byte
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}

	switch {
	case len(digits) == 11 && (digits[0] == '8' || digits[0] == '9'):
		digits[0] = '7'
	case len(digits) == 10:
		digits = append([]byte{'7'}, digits...)
	}

	if len(digits) != 11 || digits[0] != '7' {
		return Reject("🟡 Неверный формат номера.\nПримеры: +79001234567, 89001234567")
	}
	if string(digits[1:4]) == "000" {
		return Reject("🟡 Код оператора не может быть 000. Проверьте номер.")
	}
	return Accept("+" + string(digits))
}

// #endregion phone

// #region handle

var handleRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{4,31}$`)

// handleNegations normalize to "no handle" without an error.
var handleNegations = map[string]bool{
	"-":    true,
	"нет":  true,
	"no":   true,
	"none": true,
	"0":    true,
}

// Handle validates an optional messaging username. Empty input and negation
// tokens normalize to the empty string; purely numeric input passes through
// as a raw identifier; anything else must look like a @username.
func Handle(text string, _ time.Time) Result {
	t := strings.TrimSpace(text)
	if t == "" || handleNegations[strings.ToLower(t)] {
		return Accept("")
	}
	if allDigits(t) {
		return Accept(t)
	}
	name := strings.TrimPrefix(t, "@")
	if !handleRe.MatchString(name) {
		return Reject("🟡 Неверный формат.\nПример: @ivan_petrov (5–32 символа: латинские буквы, цифры, _)")
	}
	return Accept("@" + name)
}

// #endregion handle

// #region address

// Address requires at least 5 characters and a house number.
func Address(text string, _ time.Time) Result {
	t := cleanSpaces(text)
	if len([]rune(t)) < 5 {
		return Reject("🟡 Слишком короткий адрес. Укажите улицу, дом и квартиру.")
	}
	if !containsDigit(t) {
		return Reject("🟡 В адресе должен быть номер дома.")
	}
	return Accept(t)
}

// #endregion address

// #region pet-name

// PetName strips a leading digit run and capitalizes the first letter.
func PetName(text string, _ time.Time) Result {
	t := cleanSpaces(text)
	t = strings.TrimSpace(strings.TrimLeft(t, "0123456789"))
	if len([]rune(t)) < 2 {
		return Reject("🟡 Кличка должна быть не короче 2 символов.")
	}
	return Accept(Capitalize(t))
}

// #endregion pet-name

// #region age-or-dob

var dobRe = regexp.MustCompile(`^(\d{1,4})[./-](\d{1,2})[./-](\d{1,4})$`)
var ageNumRe = regexp.MustCompile(`\d+`)
var ageStripRe = regexp.MustCompile(`[^0-9\p{L} ]+`)

// AgeOrDOB accepts either a birthdate or a free-text age.
// Dates parse as D.M.Y / D/M/Y (two-digit years below 50 map to the 2000s)
// or Y.M.D when the first group exceeds 31; the result must fall in
// [1990, now] and normalizes to DD.MM.YYYY. Non-date input is treated as an
// age: a contained number must be in (0, 50], and the stored value is the
// lowercased text with punctuation stripped.
func AgeOrDOB(text string, now time.Time) Result {
	t := cleanSpaces(text)

	if m := dobRe.FindStringSubmatch(t); m != nil {
		// Date-shaped input is a date or nothing; it never falls through
		// to the age path.
		d, ok := parseBirthdate(m)
		if !ok {
			return Reject("🟡 Такой даты не существует. Проверьте ввод.")
		}
		if d.After(now) {
			return Reject("🟡 Дата рождения не может быть в будущем.")
		}
		if d.Year() < 1990 {
			return Reject("🟡 Дата рождения раньше 1990 года. Проверьте ввод.")
		}
		return Accept(d.Format("02.01.2006"))
	}

	if num := ageNumRe.FindString(t); num != "" {
		n, err := strconv.Atoi(num)
		if err != nil || n == 0 || n > 50 {
			return Reject("🟡 Возраст должен быть от 1 до 50 лет.")
		}
	}
	stripped := cleanSpaces(strings.ToLower(ageStripRe.ReplaceAllString(t, "")))
	if stripped == "" {
		return Reject("🟡 Укажите возраст или дату рождения.\nПримеры: 3 года, 15.05.2020")
	}
	return Accept(stripped)
}

// parseBirthdate turns the three matched number groups into a date.
// The first group over 31 flips the pattern to year-first.
func parseBirthdate(m []string) (time.Time, bool) {
	g1, _ := strconv.Atoi(m[1])
	g2, _ := strconv.Atoi(m[2])
	g3, _ := strconv.Atoi(m[3])

	var day, month, year int
	if g1 > 31 {
		year, month, day = g1, g2, g3
		if len(m[1]) != 4 {
			return time.Time{}, false
		}
	} else {
		day, month, year = g1, g2, g3
		switch len(m[3]) {
		case 4:
		case 2:
			// Century cutoff: two-digit years below 50 are 2000s.
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		default:
			return time.Time{}, false
		}
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (32.01 → 01.02); require a round-trip.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// #endregion age-or-dob

// #region vaccine-date

// todaySynonyms map to the current date, case-insensitively.
var todaySynonyms = map[string]bool{
	"сегодня": true,
	"today":   true,
}

// vaccineDateLayouts are tried in priority order; the first match wins.
var vaccineDateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"01.02.2006",
}

// VaccineDate normalizes a vaccination date to YYYY-MM-DD. The date may be
// at most one day in the future and at most five years in the past.
func VaccineDate(text string, now time.Time) Result {
	t := cleanSpaces(text)
	if todaySynonyms[strings.ToLower(t)] {
		return Accept(now.Format("2006-01-02"))
	}

	var parsed time.Time
	ok := false
	for _, layout := range vaccineDateLayouts {
		if d, err := time.Parse(layout, t); err == nil {
			parsed = d
			ok = true
			break
		}
	}
	if !ok {
		return Reject("🟡 Не удалось распознать дату.\nПримеры: Сегодня, 13.02.2025, 2025-02-13")
	}

	if parsed.After(now.AddDate(0, 0, 1)) {
		return Reject("🟡 Дата прививки не может быть в будущем.")
	}
	if parsed.Before(now.AddDate(-5, 0, 0)) {
		return Reject("🟡 Дата прививки старше 5 лет. Проверьте ввод.")
	}
	return Accept(parsed.Format("2006-01-02"))
}

// #endregion vaccine-date

// #region term-months

var termRe = regexp.MustCompile(`\d+(\.\d+)?`)

// TermMonths extracts the first numeric token (decimal comma allowed) and
// floors it to an integer number of months in (0, 120].
func TermMonths(text string, _ time.Time) Result {
	t := strings.ReplaceAll(text, ",", ".")
	num := termRe.FindString(t)
	if num == "" {
		return Reject("🟡 Введите число месяцев от 1 до 120.")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 || v > 120 {
		return Reject("🟡 Введите число месяцев от 1 до 120.")
	}
	return Accept(strconv.Itoa(int(v)))
}

// #endregion term-months
