package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The seeder drives the HTTP API like any other client, so it carries its
// own request payloads instead of importing the server's models.

type oilPayload struct {
	Name           string  `json:"name"`
	Brand          string  `json:"brand"`
	Viscosity      string  `json:"viscosity"`
	OilType        string  `json:"oil_type"`
	UnitCost       float64 `json:"unit_cost"`
	UnitPrice      float64 `json:"unit_price"`
	StockLiters    float64 `json:"stock_liters"`
	MinStockLiters float64 `json:"min_stock_liters"`
}

type partPayload struct {
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	Unit      string  `json:"unit"`
	UnitCost  float64 `json:"unit_cost"`
	UnitPrice float64 `json:"unit_price"`
	Stock     int64   `json:"stock"`
	MinStock  int64   `json:"min_stock"`
}

type serviceTypePayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
}

type customerPayload struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Phone string `json:"phone"`
}

type vehiclePayload struct {
	CustomerID   string `json:"customer_id"`
	Plate        string `json:"plate"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Transmission string `json:"transmission"`
	CurrentKM    int64  `json:"current_km"`
}

type lineItemPayload struct {
	PartID   string `json:"part_id"`
	Quantity int64  `json:"quantity"`
}

type recordPayload struct {
	VehicleID   string            `json:"vehicle_id"`
	OilID       string            `json:"oil_id"`
	ServiceDate time.Time         `json:"service_date"`
	Odometer    int64             `json:"odometer"`
	LitersUsed  float64           `json:"liters_used"`
	OilCharge   float64           `json:"oil_charge"`
	LaborCharge float64           `json:"labor_charge"`
	NextDueKM   *int64            `json:"next_due_km,omitempty"`
	NextDueDate *time.Time        `json:"next_due_date,omitempty"`
	Items       []lineItemPayload `json:"items,omitempty"`
}

var oilCatalog = []oilPayload{
	{Name: "Helix HX8 5W-30", Brand: "Shell", Viscosity: "5W-30", OilType: "synthetic", UnitCost: 28.00, UnitPrice: 49.90, StockLiters: 120, MinStockLiters: 20},
	{Name: "Lubrax Essencial SL 15W-40", Brand: "Petrobras", Viscosity: "15W-40", OilType: "mineral", UnitCost: 14.50, UnitPrice: 24.90, StockLiters: 200, MinStockLiters: 40},
	{Name: "Mobil Super 2000 10W-40", Brand: "Mobil", Viscosity: "10W-40", OilType: "semi_synthetic", UnitCost: 19.00, UnitPrice: 34.90, StockLiters: 150, MinStockLiters: 30},
	{Name: "Quartz 7000 10W-40", Brand: "TotalEnergies", Viscosity: "10W-40", OilType: "semi_synthetic", UnitCost: 20.50, UnitPrice: 37.90, StockLiters: 90, MinStockLiters: 15},
}

var partCatalog = []partPayload{
	{Name: "Oil filter PH5548", Brand: "Fram", Unit: "piece", UnitCost: 9.80, UnitPrice: 22.90, Stock: 60, MinStock: 12},
	{Name: "Oil filter W712/95", Brand: "Mann", Unit: "piece", UnitCost: 12.40, UnitPrice: 27.90, Stock: 45, MinStock: 10},
	{Name: "Air filter ARL8839", Brand: "Tecfil", Unit: "piece", UnitCost: 15.00, UnitPrice: 32.90, Stock: 30, MinStock: 8},
	{Name: "Drain plug washer set", Brand: "Elring", Unit: "set", UnitCost: 3.20, UnitPrice: 8.90, Stock: 100, MinStock: 25},
}

var serviceTypeCatalog = []serviceTypePayload{
	{Name: "Oil change", Description: "Engine oil replacement", BasePrice: 60},
	{Name: "Oil and filter change", Description: "Engine oil plus oil filter", BasePrice: 80},
	{Name: "Full lubrication service", Description: "Oil, filters and fluid top-up", BasePrice: 140},
}

var customerNames = []string{
	"Maria Souza", "João Pereira", "Ana Lima", "Carlos Eduardo Santos",
	"Fernanda Oliveira", "Rafael Costa", "Juliana Almeida", "Bruno Carvalho",
	"Patrícia Rocha", "Lucas Martins", "Camila Ferreira", "André Barbosa",
}

var vehicleMakes = map[string][]string{
	"Volkswagen": {"Gol", "Polo", "T-Cross", "Virtus"},
	"Fiat":       {"Uno", "Argo", "Mobi", "Toro"},
	"Chevrolet":  {"Onix", "Tracker", "S10"},
	"Toyota":     {"Corolla", "Hilux", "Yaris"},
	"Honda":      {"Civic", "Fit", "HR-V"},
	"Hyundai":    {"HB20", "Creta"},
}

var transmissions = []string{"manual", "manual", "automatic", "cvt"}

const plateLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomPlate builds a Mercosul-format plate (LLLNLNN).
func randomPlate() string {
	b := make([]byte, 7)
	for _, i := range []int{0, 1, 2, 4} {
		b[i] = plateLetters[rand.Intn(len(plateLetters))]
	}
	for _, i := range []int{3, 5, 6} {
		b[i] = byte('0' + rand.Intn(10))
	}
	return string(b)
}

func randomTaxID() string {
	digits := make([]byte, 11)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}

// randomVehicle starts the odometer low; seeded service visits advance it.
func randomVehicle(customerID string) vehiclePayload {
	makes := make([]string, 0, len(vehicleMakes))
	for m := range vehicleMakes {
		makes = append(makes, m)
	}
	make := makes[rand.Intn(len(makes))]
	model := vehicleMakes[make][rand.Intn(len(vehicleMakes[make]))]

	return vehiclePayload{
		CustomerID:   customerID,
		Plate:        randomPlate(),
		Make:         make,
		Model:        model,
		Year:         2012 + rand.Intn(13),
		Transmission: transmissions[rand.Intn(len(transmissions))],
		CurrentKM:    int64(10000 + rand.Intn(40000)),
	}
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// postJSON sends payload to apiURL+path and returns the decoded response
// object. Any non-2xx status is an error.
func postJSON(apiURL, path string, payload interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := authorizedPost(apiURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s failed with status: %d", path, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

// createEntity posts the payload and returns the created entity's id.
func createEntity(apiURL, path string, payload interface{}) (string, error) {
	result, err := postJSON(apiURL, path, payload)
	if err != nil {
		return "", err
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("no id in response from %s", path)
	}
	return id, nil
}

func login(apiURL, username, password string) (string, error) {
	result, err := postJSON(apiURL, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	token, ok := result["token"].(string)
	if !ok {
		return "", fmt.Errorf("no token in login response")
	}
	return token, nil
}

func seedCatalog(apiURL string) (oilIDs, partIDs []string, err error) {
	for _, oil := range oilCatalog {
		id, err := createEntity(apiURL, "/oils", oil)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(log.Fields{"oil_id": id, "name": oil.Name}).Info("Created oil")
		oilIDs = append(oilIDs, id)
	}
	for _, part := range partCatalog {
		id, err := createEntity(apiURL, "/parts", part)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(log.Fields{"part_id": id, "name": part.Name}).Info("Created part")
		partIDs = append(partIDs, id)
	}
	for _, st := range serviceTypeCatalog {
		id, err := createEntity(apiURL, "/service-types", st)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(log.Fields{"service_type_id": id, "name": st.Name}).Info("Created service type")
	}
	return oilIDs, partIDs, nil
}

// seedHistory writes one to three past services per vehicle, roughly six
// months apart. Odometer readings ascend from the vehicle's starting km;
// each create advances the vehicle to the reported reading.
func seedHistory(apiURL, vehicleID string, startKM int64, oilIDs, partIDs []string) error {
	visits := 1 + rand.Intn(3)
	odometer := startKM
	serviceDate := time.Now().AddDate(0, -6*visits, 0)

	for i := 0; i < visits; i++ {
		odometer += int64(5000 + rand.Intn(3000))
		idx := rand.Intn(len(oilIDs))
		oil := oilCatalog[idx]
		oilID := oilIDs[idx]
		liters := 3.5 + 0.5*float64(rand.Intn(4))

		rec := recordPayload{
			VehicleID:   vehicleID,
			OilID:       oilID,
			ServiceDate: serviceDate,
			Odometer:    odometer,
			LitersUsed:  liters,
			OilCharge:   liters * oil.UnitPrice,
			LaborCharge: 60 + float64(rand.Intn(5))*10,
		}
		if rand.Intn(2) == 0 {
			rec.Items = []lineItemPayload{{PartID: partIDs[rand.Intn(len(partIDs))], Quantity: 1}}
		}
		if i == visits-1 {
			dueKM := odometer + 10000
			dueDate := serviceDate.AddDate(0, 6, 0)
			rec.NextDueKM = &dueKM
			rec.NextDueDate = &dueDate
		}

		if _, err := postJSON(apiURL, "/records", rec); err != nil {
			return err
		}

		serviceDate = serviceDate.AddDate(0, 6, 0)
	}
	return nil
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api/v1"
	}

	customerCount := 8
	if val := os.Getenv("SEED_CUSTOMERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			customerCount = n
		}
	}
	if customerCount > len(customerNames) {
		customerCount = len(customerNames)
	}

	authToken = os.Getenv("SEED_AUTH_TOKEN")
	if authToken == "" {
		username := os.Getenv("SEED_USERNAME")
		if username == "" {
			username = "admin"
		}
		password := os.Getenv("SEED_PASSWORD")
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		token, err := login(apiURL, username, password)
		if err != nil {
			log.WithError(err).Fatal("Login failed. Set SEED_AUTH_TOKEN or SEED_USERNAME/SEED_PASSWORD.")
		}
		authToken = token
	}

	log.WithFields(log.Fields{
		"api_url":   apiURL,
		"customers": customerCount,
	}).Info("Seeding workshop data")

	oilIDs, partIDs, err := seedCatalog(apiURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to seed catalog")
	}

	for i := 0; i < customerCount; i++ {
		customerID, err := createEntity(apiURL, "/customers", customerPayload{
			Name:  customerNames[i],
			TaxID: randomTaxID(),
			Phone: fmt.Sprintf("+55 11 9%04d-%04d", rand.Intn(10000), rand.Intn(10000)),
		})
		if err != nil {
			log.WithError(err).Error("Failed to create customer")
			continue
		}
		log.WithFields(log.Fields{"customer_id": customerID, "name": customerNames[i]}).Info("Created customer")

		for v := 0; v < 1+rand.Intn(2); v++ {
			vehicle := randomVehicle(customerID)
			vehicleID, err := createEntity(apiURL, "/vehicles", vehicle)
			if err != nil {
				log.WithError(err).Error("Failed to create vehicle")
				continue
			}
			log.WithFields(log.Fields{
				"vehicle_id": vehicleID,
				"plate":      vehicle.Plate,
				"model":      vehicle.Make + " " + vehicle.Model,
			}).Info("Created vehicle")

			if err := seedHistory(apiURL, vehicleID, vehicle.CurrentKM, oilIDs, partIDs); err != nil {
				log.WithError(err).Error("Failed to seed service history")
			}
		}
	}

	log.Info("Seed completed")
}
