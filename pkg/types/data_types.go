package types

// FormView is the public view of a form. The password is never echoed back.
type FormView struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Diet      string `json:"diet"`
	Allergies string `json:"allergies"`
	Goal      string `json:"goal"`
	Status    string `json:"status"`
	Version   uint64 `json:"version"`
}

type FieldUpdate struct {
	Value string `json:"value"`
}

type RegisterResponse struct {
	Status     string `json:"status"`
	Registered bool   `json:"registered"`
}

type DietInfo struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}
