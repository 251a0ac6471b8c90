package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"labreserve-backend/internal/config"
	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
	"labreserve-backend/internal/repository/postgres"
)

type seedUser struct {
	Email      string          `yaml:"email"`
	Password   string          `yaml:"password"`
	Name       string          `yaml:"name"`
	Department string          `yaml:"department"`
	Role       domain.UserRole `yaml:"role"`
}

type seedLab struct {
	Name        string `yaml:"name"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Capacity    int    `yaml:"capacity"`
	// Manager is the email of a seeded user.
	Manager string `yaml:"manager"`
}

type seedEquipment struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	// Lab is the name of a seeded lab.
	Lab      string `yaml:"lab"`
	Quantity int    `yaml:"quantity"`
}

type SeedData struct {
	Users        []seedUser      `yaml:"users"`
	Labs         []seedLab       `yaml:"labs"`
	Equipment    []seedEquipment `yaml:"equipment"`
	AutoApproval *bool           `yaml:"system_auto_approval"`
}

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedPath := flag.String("data", "config/seed.yaml", "Path to seed data file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	data, err := readSeedFile(*seedPath)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := populate(ctx, postgres.NewStore(db), data); err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}
	logger.Info("Seed data populated", "users", len(data.Users), "labs", len(data.Labs), "equipment", len(data.Equipment))
}

func readSeedFile(filename string) (*SeedData, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func populate(ctx context.Context, store *postgres.Store, data *SeedData) error {
	users := make(map[string]*domain.User, len(data.Users))
	for _, su := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", su.Email, err)
		}
		role := su.Role
		if role == "" {
			role = domain.UserRoleUser
		}
		u := &domain.User{Email: su.Email, PasswordHash: string(hash), Name: su.Name, Department: su.Department, Role: role}
		if err := store.UserRepository.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
		users[su.Email] = u
		logger.Info("User created", "email", u.Email, "role", u.Role, "id", u.ID)
	}

	labs := make(map[string]*domain.Lab, len(data.Labs))
	for _, sl := range data.Labs {
		lab := &domain.Lab{
			Name:        sl.Name,
			Location:    sl.Location,
			Description: sl.Description,
			Capacity:    sl.Capacity,
			Status:      domain.LabStatusAvailable,
		}
		if sl.Manager != "" {
			m, ok := users[sl.Manager]
			if !ok {
				return fmt.Errorf("lab %s: unknown manager %s", sl.Name, sl.Manager)
			}
			lab.ManagerID = &m.ID
		}
		if err := store.LabRepository.Create(ctx, lab); err != nil {
			return fmt.Errorf("failed to create lab %s: %w", sl.Name, err)
		}
		labs[sl.Name] = lab
		logger.Info("Lab created", "name", lab.Name, "id", lab.ID)
	}

	for _, se := range data.Equipment {
		eq := &domain.Equipment{
			Name:        se.Name,
			Description: se.Description,
			Category:    se.Category,
			Quantity:    se.Quantity,
			Status:      domain.EquipmentStatusOperational,
		}
		if se.Lab != "" {
			lab, ok := labs[se.Lab]
			if !ok {
				return fmt.Errorf("equipment %s: unknown lab %s", se.Name, se.Lab)
			}
			eq.LabID = &lab.ID
		}
		if err := store.EquipmentRepository.Create(ctx, eq); err != nil {
			return fmt.Errorf("failed to create equipment %s: %w", se.Name, err)
		}
		logger.Info("Equipment created", "name", eq.Name, "quantity", eq.Quantity, "id", eq.ID)
	}

	if data.AutoApproval != nil {
		admin := firstAdmin(data.Users, users)
		if admin == nil {
			return fmt.Errorf("system_auto_approval needs a seeded admin to record the change")
		}
		setting := &domain.AutoApprovalSetting{TargetType: domain.ApprovalScopeSystem, Enabled: *data.AutoApproval, UpdatedBy: &admin.ID}
		entry := &domain.AutoApprovalLog{Action: domain.ActionFor(*data.AutoApproval), PerformedBy: admin.ID}
		if err := store.AutoApprovalRepository.Upsert(ctx, setting, entry); err != nil {
			return fmt.Errorf("failed to store system auto-approval: %w", err)
		}
	}
	return nil
}

func firstAdmin(seeded []seedUser, users map[string]*domain.User) *domain.User {
	for _, su := range seeded {
		if su.Role == domain.UserRoleAdmin {
			return users[su.Email]
		}
	}
	return nil
}
