package adapter

import (
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/wire"
)

// DeviceDescriptorToWire converts a discovered device to its wire record.
func DeviceDescriptorToWire(d model.DeviceDescriptor) wire.ServiceMessage {
	return wire.ServiceMessage{
		DeviceName:        d.Name,
		DeviceDescription: d.Description,
		Hostname:          d.Hostname,
		PortNumber:        d.Port.Ptr(),
		ServerID:          d.ServerID,
		URLPrefix:         d.URLPrefix,
		Scheme:            d.Scheme,
		ServiceTypes:      append([]string(nil), d.ServiceTypes...),
	}
}

// DeviceDescriptorFromWire converts a discovery record.
func DeviceDescriptorFromWire(m *wire.ServiceMessage) (model.DeviceDescriptor, error) {
	if m == nil {
		return model.DeviceDescriptor{}, malformed("service message is missing")
	}
	return model.DeviceDescriptor{
		ServerID:     m.ServerID,
		Hostname:     m.Hostname,
		Port:         optional(m.PortNumber),
		URLPrefix:    m.URLPrefix,
		Description:  m.DeviceDescription,
		Scheme:       m.Scheme,
		Name:         m.DeviceName,
		ServiceTypes: append([]string(nil), m.ServiceTypes...),
	}, nil
}

// DeviceDescriptorsFromWire converts a set of discovery records.
func DeviceDescriptorsFromWire(msgs []wire.ServiceMessage) []model.DeviceDescriptor {
	out := make([]model.DeviceDescriptor, 0, len(msgs))
	for i := range msgs {
		d, _ := DeviceDescriptorFromWire(&msgs[i])
		out = append(out, d)
	}
	return out
}

// DeviceToWire converts the local device to its wire record.
func DeviceToWire(d model.Device) wire.Device {
	out := wire.Device{
		UID:          d.UID,
		Name:         d.Name,
		Description:  d.Description,
		IPv4Address:  d.IPv4Address,
		CurrencyCode: d.Currency,
	}
	if len(d.Services) > 0 {
		out.Services = make(map[int32]wire.Service, len(d.Services))
		for key, s := range d.Services {
			out.Services[key] = ServiceToWire(s)
		}
	}
	return out
}

// DeviceFromWire converts the agent's device record.
func DeviceFromWire(d *wire.Device) (model.Device, error) {
	if d == nil {
		return model.Device{}, malformed("device record is missing")
	}
	out := model.Device{
		UID:         d.UID,
		Name:        d.Name,
		Description: d.Description,
		IPv4Address: d.IPv4Address,
		Currency:    d.CurrencyCode,
	}
	if len(d.Services) > 0 {
		out.Services = make(map[int32]model.Service, len(d.Services))
		for key, s := range d.Services {
			svc, err := ServiceFromWire(&s)
			if err != nil {
				return model.Device{}, err
			}
			out.Services[key] = svc
		}
	}
	return out, nil
}

// CardToWire converts a payment card.
func CardToWire(c model.Card) wire.HCECard {
	return wire.HCECard{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		ExpMonth:   c.ExpMonth.Ptr(),
		ExpYear:    c.ExpYear.Ptr(),
		CardNumber: c.CardNumber,
		Type:       c.Type,
		CVC:        c.CVC,
	}
}

// CardFromWire converts a payment card record.
func CardFromWire(c *wire.HCECard) (model.Card, error) {
	if c == nil {
		return model.Card{}, malformed("card record is missing")
	}
	return model.Card{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		ExpMonth:   optional(c.ExpMonth),
		ExpYear:    optional(c.ExpYear),
		CardNumber: c.CardNumber,
		Type:       c.Type,
		CVC:        c.CVC,
	}, nil
}
