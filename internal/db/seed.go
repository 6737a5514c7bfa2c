package db

import (
	"fmt"
	"math/rand"
	"time"

	"schoolmon/internal/crypto"
	"schoolmon/internal/model"
)

var seedSchools = []model.School{
	{ID: "1", Name: "Základná škola M. R. Štefánika", Address: "Štefánikova 12, 080 01 Prešov", PhoneNumber: "+421 51 123 456"},
	{ID: "2", Name: "Gymnázium J. A. Komenského", Address: "Komenského 8, 040 01 Košice", PhoneNumber: "+421 55 234 567"},
	{ID: "3", Name: "Stredná odborná škola technická", Address: "Technická 5, 917 01 Trnava", PhoneNumber: "+421 33 345 678"},
	{ID: "4", Name: "Základná škola Karpatská", Address: "Karpatská 3, 060 01 Kežmarok", PhoneNumber: "+421 52 456 789"},
	{ID: "5", Name: "Spojená škola sv. Františka", Address: "Františkánska 15, 010 01 Žilina", PhoneNumber: "+421 41 567 890"},
	{ID: "6", Name: "Obchodná akadémia Bratislava", Address: "Račianska 25, 831 02 Bratislava", PhoneNumber: "+421 2 678 901"},
	{ID: "7", Name: "Katolícke gymnázium sv. Mikuláša", Address: "Mlynská 10, 071 01 Michalovce", PhoneNumber: "+421 56 789 012"},
	{ID: "8", Name: "Základná škola SNP", Address: "SNP 99, 974 01 Banská Bystrica", PhoneNumber: "+421 48 890 123"},
	{ID: "9", Name: "Stredná zdravotnícka škola", Address: "Zdravotnícka 1, 911 01 Trenčín", PhoneNumber: "+421 32 901 234"},
	{ID: "10", Name: "Základná umelecká škola Harmónia", Address: "Hudobná 7, 058 01 Poprad", PhoneNumber: "+421 52 012 345"},
	{ID: "11", Name: "Evanjelické lýceum Bratislava", Address: "Vranovská 2, 851 02 Bratislava", PhoneNumber: "+421 2 123 456"},
	{ID: "12", Name: "Gymnázium Milana Rastislava Štefánika", Address: "Masarykova 16, 902 01 Pezinok", PhoneNumber: "+421 33 234 567"},
	{ID: "13", Name: "Základná škola s materskou školou Lúka", Address: "Lúčna 4, 935 01 Levice", PhoneNumber: "+421 36 345 678"},
	{ID: "14", Name: "Škola pre mimoriadne nadané deti", Address: "Gen. Svobodu 3, 851 01 Bratislava", PhoneNumber: "+421 2 456 789"},
	{ID: "15", Name: "Stredná priemyselná škola elektrotechnická", Address: "Elektrotech. 9, 911 05 Trenčín", PhoneNumber: "+421 32 567 890"},
}

// QRCodes is the allow-list accepted by the scan endpoint.
var QRCodes = []string{"DEVICE:101", "DEVICE:202", "DEVICE:303"}

func fixedDevices() map[string][]model.Device {
	ts := func(v string) time.Time {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			panic(err)
		}
		return t
	}
	return map[string][]model.Device{
		"1": {
			{ID: "101", Name: "Projektor v triede A1", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T10:30:00Z")},
			{ID: "102", Name: "Router počítačovej učebne", Status: model.StatusWarning, LastUpdated: ts("2025-05-30T09:15:00Z")},
			{ID: "103", Name: "Tlačiareň v knižnici", Status: model.StatusCritical, LastUpdated: ts("2025-05-29T14:45:00Z")},
			{ID: "104", Name: "WiFi prístupový bod v jedálni", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T11:20:00Z")},
			{ID: "105", Name: "Switch v riaditeľni", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T08:00:00Z")},
		},
		"2": {
			{ID: "201", Name: "Server v laboratóriu", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T10:00:00Z")},
			{ID: "202", Name: "WiFi prístupový bod v telocvični", Status: model.StatusCritical, LastUpdated: ts("2025-05-28T16:30:00Z")},
			{ID: "203", Name: "Ozvučovací systém v aule", Status: model.StatusWarning, LastUpdated: ts("2025-05-29T13:45:00Z")},
			{ID: "204", Name: "Tlačiareň v kancelárii", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T09:10:00Z")},
		},
		"3": {
			{ID: "301", Name: "Projektor vo výtvarnej učebni", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T11:15:00Z")},
			{ID: "302", Name: "Audio systém v hudobnej učebni", Status: model.StatusHealthy, LastUpdated: ts("2025-05-30T10:45:00Z")},
			{ID: "303", Name: "Bezpečnostná kamera pri hlavnom vchode", Status: model.StatusCritical, LastUpdated: ts("2025-05-29T08:30:00Z")},
		},
	}
}

// SeedDevices returns the fixed devices of schools 1-3 plus 2-6 generated
// devices for every other school, last updated within 48h before now.
func SeedDevices(rng *rand.Rand, now time.Time) map[string][]model.Device {
	devices := fixedDevices()
	for _, school := range seedSchools {
		if _, ok := devices[school.ID]; ok {
			continue
		}
		count := rng.Intn(5) + 2
		list := make([]model.Device, 0, count)
		for j := 1; j <= count; j++ {
			id := school.ID + fmt.Sprintf("%02d", j)
			age := time.Duration(rng.Int63n(int64(48 * time.Hour)))
			list = append(list, model.Device{
				ID:          id,
				Name:        "Device " + id,
				Status:      model.DeviceStatuses[rng.Intn(len(model.DeviceStatuses))],
				LastUpdated: now.Add(-age).UTC().Truncate(time.Second),
			})
		}
		devices[school.ID] = list
	}
	return devices
}

func SeedSchools() []model.School {
	return append([]model.School(nil), seedSchools...)
}

// NewSeededStore builds the mock store. A zero seed picks a time-based one.
func NewSeededStore(seed int64, credential Credential) *Store {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return NewStore(SeedSchools(), SeedDevices(rng, time.Now()), credential, QRCodes)
}

// NewCredential hashes the password of the single demo account.
func NewCredential(userID, username, password string) (Credential, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return Credential{}, err
	}
	return Credential{UserID: userID, Username: username, PasswordHash: hash}, nil
}
