package splitwise

// User is a Splitwise user as returned by the API.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName is the user's full name, first name only when the last name is
// absent.
func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ExpenseUser is one participant's row on a raw expense. Shares are decimal
// strings on the wire.
type ExpenseUser struct {
	User      User   `json:"user"`
	PaidShare string `json:"paid_share"`
	OwedShare string `json:"owed_share"`
}

// Expense is one raw expense record from the Splitwise API. Timestamps stay
// as wire strings; the updated_at string in particular feeds the change hash
// and must not be reformatted.
type Expense struct {
	ID             int64         `json:"id"`
	GroupID        int64         `json:"group_id"`
	Description    string        `json:"description"`
	Payment        bool          `json:"payment"`
	Cost           string        `json:"cost"`
	Date           string        `json:"date"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
	DeletedAt      string        `json:"deleted_at"`
	CreationMethod string        `json:"creation_method"`
	Users          []ExpenseUser `json:"users"`
}

// Group is a Splitwise group.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
