package chess

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrProfileNotFound = errors.New("difficulty profile not found")

const DefaultProfileID = "warrior"

// Weight is a behavior coefficient in [0,1].
type Weight float64

type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

type Behavior struct {
	MoveDelay   DelayRange
	SearchDepth int
	Randomness  Weight
	Aggression  Weight
	Defensive   Weight
	Tactical    Weight
}

type Profile struct {
	ID          string
	Name        string
	Description string
	Insignia    string
	Color       string
	Behavior    Behavior
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var profiles = []Profile{
	{
		ID:          "iniciado",
		Name:        "Iniciado del Mercado",
		Description: "Un trader que apenas comienza su viaje. Como un peón en ajedrez, solo ve hacia adelante sin comprender la estrategia del tablero financiero.",
		Insignia:    "/insignias/1-iniciados.png",
		Color:       "#FAFAFA",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(300), Max: ms(600)},
			SearchDepth: 1,
			Randomness:  0.8,
			Aggression:  0.2,
			Defensive:   0.3,
			Tactical:    0.1,
		},
	},
	{
		ID:          "acolito",
		Name:        "Acólito del Trading",
		Description: "Un trader que ha experimentado sus primeras pérdidas y victorias. Comienza a entender que el mercado tiene patrones, como un caballo que aprende a moverse en L.",
		Insignia:    "/insignias/2-acolitos.png",
		Color:       "#FFD447",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(200), Max: ms(500)},
			SearchDepth: 2,
			Randomness:  0.6,
			Aggression:  0.3,
			Defensive:   0.4,
			Tactical:    0.2,
		},
	},
	{
		ID:          "warrior",
		Name:        "Guerrero del Mercado",
		Description: "Un trader que ha desarrollado disciplina y control emocional. Sabe cuándo atacar y cuándo defender, como un alfil que domina las diagonales del tablero.",
		Insignia:    "/insignias/3-warriors.png",
		Color:       "#3ED598",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(500), Max: ms(1000)},
			SearchDepth: 3,
			Randomness:  0.4,
			Aggression:  0.5,
			Defensive:   0.5,
			Tactical:    0.4,
		},
	},
	{
		ID:          "lord",
		Name:        "Lord del Capital",
		Description: "Un trader que ha acumulado riqueza y experiencia. Su visión estratégica es como la de una torre: directa, poderosa y capaz de controlar filas y columnas del mercado.",
		Insignia:    "/insignias/4-lords.png",
		Color:       "#4671D5",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(400), Max: ms(800)},
			SearchDepth: 4,
			Randomness:  0.2,
			Aggression:  0.7,
			Defensive:   0.6,
			Tactical:    0.7,
		},
	},
	{
		ID:          "darth",
		Name:        "Darth del Trading",
		Description: "Un trader que ha dominado la psicología del mercado. Su estrategia es como la de una reina: versátil, agresiva y capaz de cambiar el juego en un solo movimiento.",
		Insignia:    "/insignias/5-darths.png",
		Color:       "#EC4D58",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(300), Max: ms(600)},
			SearchDepth: 5,
			Randomness:  0.1,
			Aggression:  0.8,
			Defensive:   0.7,
			Tactical:    0.8,
		},
	},
	{
		ID:          "maestro",
		Name:        "Maestro del Mercado",
		Description: "El trader supremo que ha integrado todas las lecciones del mercado. Como un rey en ajedrez, su supervivencia es primordial, pero su influencia es absoluta. Ha trascendido la codicia y el miedo.",
		Insignia:    "/insignias/6-maestros.png",
		Color:       "#8A8A8A",
		Behavior: Behavior{
			MoveDelay:   DelayRange{Min: ms(200), Max: ms(400)},
			SearchDepth: 6,
			Randomness:  0.05,
			Aggression:  0.9,
			Defensive:   0.8,
			Tactical:    0.9,
		},
	},
}

func init() {
	if err := validateCatalog(profiles); err != nil {
		panic(err)
	}
}

// Profiles returns the catalog in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Lookup never fails: unknown ids resolve to the first catalog entry.
func Lookup(id string) Profile {
	if p, err := GetProfile(id); err == nil {
		return p
	}
	return profiles[0]
}

func GetProfile(id string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	for _, p := range profiles {
		if p.ID == key {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
}

func validateCatalog(list []Profile) error {
	if len(list) == 0 {
		return fmt.Errorf("difficulty catalog is empty")
	}
	seen := make(map[string]struct{}, len(list))
	for _, p := range list {
		if err := ValidateProfile(p); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate difficulty profile: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func ValidateProfile(p Profile) error {
	b := p.Behavior
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("profile id required")
	case b.SearchDepth < 1:
		return fmt.Errorf("profile %s: search depth must be >= 1: %d", p.ID, b.SearchDepth)
	case b.MoveDelay.Min < 0:
		return fmt.Errorf("profile %s: move delay min must be >= 0: %s", p.ID, b.MoveDelay.Min)
	case b.MoveDelay.Min > b.MoveDelay.Max:
		return fmt.Errorf("profile %s: move delay min (%s) exceeds max (%s)", p.ID, b.MoveDelay.Min, b.MoveDelay.Max)
	}
	weights := []struct {
		name string
		w    Weight
	}{
		{"randomness", b.Randomness},
		{"aggression", b.Aggression},
		{"defensive", b.Defensive},
		{"tactical", b.Tactical},
	}
	for _, item := range weights {
		v := float64(item.w)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("profile %s: %s must be in [0,1]: %v", p.ID, item.name, v)
		}
	}
	return nil
}
