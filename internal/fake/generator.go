// Package fake provides a loopback SA-MP query responder for tests and a
// generator of random server records for development databases.
package fake

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/storage"
)

// GenerateData populates the storage with count randomized server records.
func GenerateData(store *storage.Repository, count int) {
	gamemodes := []string{"Freeroam", "Roleplay", "Deathmatch", "Race", "Cops and Robbers", "Stunt"}
	languages := []string{"English", "Русский", "Español", "Português", "Polski", "Deutsch"}
	maps := []string{"San Andreas", "Los Santos", "San Fierro", "Las Venturas"}
	versions := []string{"0.3.7-R2", "0.3.7-R3", "0.3.DL-R1", "omp 1.2.0"}
	countries := []string{"US", "RU", "BR", "PL", "DE", "UA", "ES", "RO", "TR", "ID"}

	for i := 0; i < count; i++ {
		seen := time.Now().Add(-time.Duration(rand.IntN(30*24*60)) * time.Minute)
		maxPlayers := []int{50, 100, 500, 1000}[rand.IntN(4)]

		srv := models.Server{
			Address:     fmt.Sprintf("%d.%d.%d.%d", rand.IntN(220)+1, rand.IntN(255), rand.IntN(255), rand.IntN(255)),
			Port:        7777 + rand.IntN(10),
			Hostname:    fmt.Sprintf("SA-MP Server #%d", rand.IntN(1000)),
			GameMode:    gamemodes[rand.IntN(len(gamemodes))],
			Language:    languages[rand.IntN(len(languages))],
			Version:     versions[rand.IntN(len(versions))],
			MapName:     maps[rand.IntN(len(maps))],
			Players:     rand.IntN(maxPlayers + 1),
			MaxPlayers:  maxPlayers,
			Closed:      rand.Float32() < 0.05,
			Queried:     true,
			CountryCode: countries[rand.IntN(len(countries))],
			FirstSeen:   seen.Add(-7 * 24 * time.Hour),
			LastSeen:    seen,
		}

		// some servers announce several times
		announces := 1 + rand.IntN(3)
		for range announces {
			if err := store.UpsertServer(srv); err != nil {
				log.Warn().Err(err).Msg("Failed to generate fake server")
				break
			}
		}
	}
}
