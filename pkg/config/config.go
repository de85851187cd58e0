// Package config loads the YAML configuration of the Within shell.
//
// Example:
//
//	agent:
//	  host: 127.0.0.1
//	  port: 9500
//	  callbackPort: 9501
//	  protocol: cbor
//	  binary: /usr/local/bin/within-agent
//	  readyTimeout: 10s
//	deviceNameForSearch: car-park-charger
//	hceCard:
//	  firstName: Bilbo
//	  lastName: Baggins
//	  expMonth: 11
//	  expYear: 2028
//	  cardNumber: "5555555555554444"
//	  type: Card
//	  cvc: "113"
//	pspConfig:
//	  merchant_client_key: T_C_...
//	producer:
//	  name: Car charger
//	  description: Can charge your hybrid / electric car
//	  serviceType: car-charger
//	  price:
//	    description: Kilowatt-hour
//	    unitDescription: One kilowatt-hour
//	    unitId: 1
//	    amount: 25
//	    currency: GBP
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/session"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Defaults applied by Load.
const (
	DefaultDeviceName   = "car-park-charger"
	DefaultServiceName  = "Car charger"
	DefaultServiceType  = "car-charger"
	DefaultPriceAmount  = 25
	DefaultCurrency     = "GBP"
	DefaultReadyTimeout = 10 * time.Second
)

// File is the shell configuration file.
type File struct {
	Agent               Agent             `yaml:"agent"`
	DeviceNameForSearch string            `yaml:"deviceNameForSearch"`
	HCECard             Card              `yaml:"hceCard"`
	PSPConfig           map[string]string `yaml:"pspConfig"`
	Producer            Producer          `yaml:"producer"`
}

// Agent holds the agent's connection parameters.
type Agent struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	CallbackPort int           `yaml:"callbackPort"`
	Protocol     string        `yaml:"protocol"`
	Binary       string        `yaml:"binary"`
	Args         []string      `yaml:"args"`
	ReadyTimeout time.Duration `yaml:"readyTimeout"`
}

// Card is the consumer's payment card.
type Card struct {
	FirstName  string `yaml:"firstName"`
	LastName   string `yaml:"lastName"`
	ExpMonth   int32  `yaml:"expMonth"`
	ExpYear    int32  `yaml:"expYear"`
	CardNumber string `yaml:"cardNumber"`
	Type       string `yaml:"type"`
	CVC        string `yaml:"cvc"`
}

// Producer is the service the shell offers in producer mode.
type Producer struct {
	ServiceID   int32  `yaml:"serviceId"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ServiceType string `yaml:"serviceType"`
	Price       Price  `yaml:"price"`
}

// Price is the producer service's single price.
type Price struct {
	ID              int32  `yaml:"id"`
	Description     string `yaml:"description"`
	UnitDescription string `yaml:"unitDescription"`
	UnitID          int32  `yaml:"unitId"`
	Amount          int32  `yaml:"amount"`
	Currency        string `yaml:"currency"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

// Load reads, defaults and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates YAML data.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.Config("", "parse: %v", err)
	}
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.Agent.Host == "" {
		f.Agent.Host = session.DefaultHost
	}
	if f.Agent.Port == 0 {
		f.Agent.Port = session.DefaultPort
	}
	if f.Agent.Protocol == "" {
		f.Agent.Protocol = string(wire.DefaultProtocol)
	}
	if f.Agent.Binary != "" && f.Agent.ReadyTimeout == 0 {
		f.Agent.ReadyTimeout = DefaultReadyTimeout
	}
	if f.DeviceNameForSearch == "" {
		f.DeviceNameForSearch = DefaultDeviceName
	}

	p := &f.Producer
	if p.ServiceID == 0 {
		p.ServiceID = 1
	}
	if p.Name == "" {
		p.Name = DefaultServiceName
	}
	if p.ServiceType == "" {
		p.ServiceType = DefaultServiceType
	}
	if p.Price.ID == 0 {
		p.Price.ID = 1
	}
	if p.Price.Amount == 0 {
		p.Price.Amount = DefaultPriceAmount
	}
	if p.Price.Currency == "" {
		p.Price.Currency = DefaultCurrency
	}
}

// Validate checks the file. Failures are *errs.ConfigurationError.
func (f *File) Validate() error {
	if _, err := wire.ParseProtocol(f.Agent.Protocol); err != nil {
		return errs.Config("agent.protocol", "%v", err)
	}
	if f.Agent.ReadyTimeout < 0 {
		return errs.Config("agent.readyTimeout", "must not be negative")
	}
	if m := f.HCECard.ExpMonth; m < 0 || m > 12 {
		return errs.Config("hceCard.expMonth", "%d is outside 1..12", m)
	}
	if f.Producer.Price.Amount < 0 {
		return errs.Config("producer.price.amount", "must not be negative")
	}
	cfg := f.SessionConfig()
	return cfg.Validate()
}

// SessionConfig returns the session parameters the file describes.
func (f *File) SessionConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.Host = f.Agent.Host
	cfg.Port = f.Agent.Port
	cfg.CallbackPort = f.Agent.CallbackPort
	cfg.Protocol, _ = wire.ParseProtocol(f.Agent.Protocol)
	cfg.ReadyTimeout = f.Agent.ReadyTimeout
	return cfg
}

// Card returns the configured payment card.
func (f *File) Card() model.Card {
	c := f.HCECard
	card := model.Card{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		CardNumber: c.CardNumber,
		Type:       c.Type,
		CVC:        c.CVC,
	}
	if c.ExpMonth != 0 {
		card.ExpMonth = model.Some(c.ExpMonth)
	}
	if c.ExpYear != 0 {
		card.ExpYear = model.Some(c.ExpYear)
	}
	return card
}

// PSP returns the default PSP config overlaid with the file's keys.
func (f *File) PSP() model.PSPConfig {
	return model.NewPSPConfig().Merge(f.PSPConfig)
}

// ProducerService returns the service offered in producer mode.
func (f *File) ProducerService() model.Service {
	p := f.Producer
	svc := model.Service{
		ID:          model.Some(p.ServiceID),
		Name:        p.Name,
		Description: p.Description,
		ServiceType: p.ServiceType,
	}
	price := model.Price{
		ID:              model.Some(p.Price.ID),
		Description:     p.Price.Description,
		UnitDescription: p.Price.UnitDescription,
		PerUnit:         model.Money{Amount: p.Price.Amount, Currency: p.Price.Currency},
	}
	if p.Price.UnitID != 0 {
		price.UnitID = model.Some(p.Price.UnitID)
	}
	svc.AddPrice(price)
	return svc
}
