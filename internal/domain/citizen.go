package domain

// IsValidCitizenID проверяет 13-значный идентификационный номер гражданина
// Последняя цифра - контрольная сумма по модулю 11
func IsValidCitizenID(id string) bool {
	if len(id) != CitizenIDLength {
		return false
	}

	sum := 0
	for i := 0; i < CitizenIDLength; i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return false
		}
		if i < CitizenIDLength-1 {
			sum += int(c-'0') * (CitizenIDLength - i)
		}
	}

	check := (11 - sum%11) % 10
	return int(id[CitizenIDLength-1]-'0') == check
}
