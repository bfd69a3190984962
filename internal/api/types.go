package api

// NamedResource is a {name, url} pair as returned by the listing and type endpoints.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Page is a listing response. Next and Previous are empty on the last/first page.
type Page struct {
	Count    int             `json:"count"`
	Next     string          `json:"next"`
	Previous string          `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// Pokemon is the detail payload for a single entry.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience int           `json:"base_experience"`
	Types          []PokemonType `json:"types"`
	Stats          []PokemonStat `json:"stats"`
}

// PokemonType is one slot of a Pokemon's type list.
type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// PokemonStat is one base stat of a Pokemon.
type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// TypeNames returns the type names in slot order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

// StatMap returns base stats keyed by stat name.
func (p Pokemon) StatMap() map[string]int {
	stats := make(map[string]int, len(p.Stats))
	for _, s := range p.Stats {
		stats[s.Stat.Name] = s.BaseStat
	}
	return stats
}

// TypeList is the response of GET /api/type.
type TypeList struct {
	Results []NamedResource `json:"results"`
}

// Member is a user-owned Pokemon record, used for both favorites and team.
// Field tags follow the backend's wire names.
type Member struct {
	ID       int    `json:"IDPokemonUsuario"`
	UserID   int    `json:"IDUsuario"`
	TypeID   *int   `json:"IDTipoPokemon"`
	Code     string `json:"Codigo"`
	ImageURL string `json:"ImagemUrl"`
	Name     string `json:"Nome"`
	Team     bool   `json:"GrupoBatalha"`
	Favorite bool   `json:"Favorito"`
}

// MemberInput is the body of POST /api/me/favorites and POST /api/me/team.
type MemberInput struct {
	TypeID   *int   `json:"IDTipoPokemon,omitempty"`
	Code     string `json:"Codigo"`
	Name     string `json:"Nome"`
	ImageURL string `json:"ImagemUrl,omitempty"`
	Favorite bool   `json:"Favorito,omitempty"`
	Team     bool   `json:"GrupoBatalha,omitempty"`
}

// User is the authenticated account as returned by login, register and me.
type User struct {
	ID      int    `json:"id"`
	Name    string `json:"nome"`
	Email   string `json:"email"`
	Login   string `json:"login"`
	IsAdmin bool   `json:"isAdmin"`
}

// UserSummary is one row of the admin user listing.
type UserSummary struct {
	ID        int     `json:"id"`
	Name      string  `json:"nome"`
	CreatedAt *string `json:"dtInclusao"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message     string `json:"msg,omitempty"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Registration is the body of POST /api/auth/register.
type Registration struct {
	Name     string `json:"nome"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"senha"`
}

type passwordReset struct {
	LoginOrEmail string `json:"loginOrEmail"`
	NewPassword  string `json:"novaSenha"`
}

type message struct {
	Msg string `json:"msg"`
}

type health struct {
	Status string `json:"status"`
}
