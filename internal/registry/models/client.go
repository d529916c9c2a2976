package models

// ClientID is the store-assigned numeric identity. It is immutable once
// the record is created.
type ClientID int64

// Client is a persisted business contact.
//
// Invariants:
//   - Name, Email, Telephone, CNPJ and Address are non-blank
//   - Email and CNPJ are unique across the registry
//   - CEP and City are optional and may be empty
type Client struct {
	ID        ClientID `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Telephone string   `json:"telephone"`
	CNPJ      string   `json:"cnpj"`
	CEP       string   `json:"cep"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
}

// Draft is the mutable working copy of the seven client fields scoped to
// one open editing session. It is not persisted until validated and
// submitted, and doubles as the create/update request body.
type Draft struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	CNPJ      string `json:"cnpj"`
	CEP       string `json:"cep"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

// DraftOf seeds an editing session from an existing record.
func DraftOf(c Client) Draft {
	return Draft{
		Name:      c.Name,
		Email:     c.Email,
		Telephone: c.Telephone,
		CNPJ:      c.CNPJ,
		CEP:       c.CEP,
		Address:   c.Address,
		City:      c.City,
	}
}

// Apply copies the draft's fields onto a record, leaving the id alone.
func (d Draft) Apply(c *Client) {
	c.Name = d.Name
	c.Email = d.Email
	c.Telephone = d.Telephone
	c.CNPJ = d.CNPJ
	c.CEP = d.CEP
	c.Address = d.Address
	c.City = d.City
}
