package rules

import "github.com/KirkDiggler/mafia/internal/models"

// MinPlayers is the smallest table a game can start with
const MinPlayers = 4

// Shuffler permutes n elements; random.Source satisfies it
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// RoleBracket returns the unshuffled role multiset for playerCount:
// the bracket's fixed roles followed by villagers.
func RoleBracket(playerCount int) ([]models.RoleID, error) {
	if playerCount < MinPlayers {
		return nil, ErrInvalidPlayerCount
	}

	var fixed []models.RoleID
	switch {
	case playerCount <= 6:
		fixed = []models.RoleID{
			models.RoleMafia,
			models.RoleDoctor,
			models.RoleDetective,
		}
	case playerCount <= 10:
		fixed = []models.RoleID{
			models.RoleMafia, models.RoleMafia,
			models.RoleDoctor,
			models.RoleDetective,
			models.RoleBodyguard,
			models.RoleSheriff,
		}
	default:
		fixed = []models.RoleID{
			models.RoleMafia, models.RoleMafia,
			models.RoleGodfather,
			models.RoleDoctor,
			models.RoleDetective,
			models.RoleBodyguard,
			models.RoleVigilante,
			models.RoleJester,
		}
	}

	roles := make([]models.RoleID, 0, playerCount)
	roles = append(roles, fixed...)
	for len(roles) < playerCount {
		roles = append(roles, models.RoleVillager)
	}
	return roles, nil
}

// AssignRoles returns the bracket's roles in uniformly random order. The
// role at index i belongs to the player seated at index i.
func AssignRoles(playerCount int, shuffler Shuffler) ([]models.RoleID, error) {
	if shuffler == nil {
		return nil, ErrNilShuffler
	}

	roles, err := RoleBracket(playerCount)
	if err != nil {
		return nil, err
	}

	shuffler.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	return roles, nil
}
