package registry

import (
	"github.com/obdlabs/codingreg/internal/manufacturer"
	"github.com/obdlabs/codingreg/internal/models"
)

// BuiltinCatalogs returns the catalogs shipped with the server: the VAG
// module/coding-bit set (Ross-Tech VCDS and wiki documentation) and the
// default PID set. Admin seeding applies these through the same pipeline
// as external imports.
func BuiltinCatalogs() []Catalog {
	return []Catalog{vagCatalog(), defaultPIDCatalog()}
}

func vagCatalog() Catalog {
	return Catalog{
		Manufacturer: manufacturer.VAG,
		Version:      "1.0.0",
		Modules:      vagModules,
		CodingBits:   vagCodingBits,
	}
}

func defaultPIDCatalog() Catalog {
	return Catalog{
		Manufacturer: manufacturer.Generic,
		Version:      "1.0.0",
		PIDs:         defaultPIDs,
	}
}

var vagModules = []CatalogModule{
	// Core modules, present on most vehicles.
	{Address: "01", Name: "Engine", LongName: "Engine Control Module (ECM)", CANID: "7E0", CodingSupported: true, CodingDID: "F19E", Priority: 1},
	{Address: "02", Name: "Transmission", LongName: "Transmission Control Module (TCM)", CANID: "7E1", CodingSupported: true, CodingDID: "F19E", Priority: 2},
	{Address: "03", Name: "ABS/ESP", LongName: "ABS Brakes / ESP", CANID: "7E2", CodingSupported: true, CodingDID: "F19E", Priority: 3},
	{Address: "08", Name: "HVAC", LongName: "Auto HVAC / Climatronic", CANID: "708", CodingSupported: true, CodingDID: "F19E", Priority: 10},
	{Address: "09", Name: "Central Electronics", LongName: "Central Electronics (BCM)", CANID: "710", CodingSupported: true, CodingDID: "F19E", Priority: 5},
	{Address: "15", Name: "Airbag", LongName: "Airbag Control Module", CANID: "715", CodingSupported: true, CodingDID: "F19E", Priority: 4},
	{Address: "16", Name: "Steering Column", LongName: "Steering Column Electronics", CANID: "716", CodingSupported: true, CodingDID: "F19E", Priority: 20},
	{Address: "17", Name: "Instrument Cluster", LongName: "Dashboard / Instrument Cluster", CANID: "714", CodingSupported: true, CodingDID: "F19E", Priority: 6},
	{Address: "19", Name: "CAN Gateway", LongName: "CAN Gateway", CANID: "716", CodingSupported: false, CodingDID: "F19E", Priority: 7},

	// Comfort modules.
	{Address: "42", Name: "Driver Door", LongName: "Driver Door Electronics", CANID: "72A", CodingSupported: true, CodingDID: "F19E", Priority: 30},
	{Address: "44", Name: "Steering Assist", LongName: "Power Steering", CANID: "72C", CodingSupported: true, CodingDID: "F19E", Priority: 25},
	{Address: "46", Name: "Central Comfort", LongName: "Central Comfort Module", CANID: "72E", CodingSupported: true, CodingDID: "F19E", Priority: 8},
	{Address: "52", Name: "Passenger Door", LongName: "Passenger Door Electronics", CANID: "734", CodingSupported: true, CodingDID: "F19E", Priority: 31},
	{Address: "62", Name: "Rear Left Door", LongName: "Rear Left Door Electronics", CANID: "73E", CodingSupported: true, CodingDID: "F19E", Priority: 32},
	{Address: "72", Name: "Rear Right Door", LongName: "Rear Right Door Electronics", CANID: "748", CodingSupported: true, CodingDID: "F19E", Priority: 33},

	// Lighting.
	{Address: "55", Name: "Headlights", LongName: "Headlight Range / Leveling", CANID: "737", CodingSupported: true, CodingDID: "F19E", Priority: 15},
	{Address: "39", Name: "Right Headlight", LongName: "Right Headlight", CANID: "727", CodingSupported: true, CodingDID: "F19E", Priority: 16},
	{Address: "4F", Name: "Central Electronics 2", LongName: "Central Electronics 2", CANID: "72F", CodingSupported: true, CodingDID: "F19E", Priority: 17},

	// Infotainment.
	{Address: "56", Name: "Radio", LongName: "Radio Module", CANID: "738", CodingSupported: true, CodingDID: "F19E", Priority: 40},
	{Address: "57", Name: "TV Tuner", LongName: "Television Tuner", CANID: "739", CodingSupported: true, CodingDID: "F19E", Priority: 41},
	{Address: "5F", Name: "Infotainment", LongName: "Information Electronics (MMI)", CANID: "73F", CodingSupported: true, CodingDID: "F19E", Priority: 9},
	{Address: "47", Name: "Sound System", LongName: "Sound System Control Module", CANID: "72F", CodingSupported: true, CodingDID: "F19E", Priority: 42},
	{Address: "37", Name: "Navigation", LongName: "Navigation", CANID: "725", CodingSupported: true, CodingDID: "F19E", Priority: 43},

	// Safety / driver assist.
	{Address: "13", Name: "ACC", LongName: "Adaptive Cruise Control", CANID: "713", CodingSupported: true, CodingDID: "F19E", Priority: 50},
	{Address: "A5", Name: "Front Sensors", LongName: "Front Sensors (ACC)", CANID: "7A5", CodingSupported: true, CodingDID: "F19E", Priority: 51},
	{Address: "76", Name: "Parking Aid", LongName: "Park Distance Control", CANID: "74E", CodingSupported: true, CodingDID: "F19E", Priority: 52},
	{Address: "6C", Name: "Backup Camera", LongName: "Rear View Camera", CANID: "744", CodingSupported: true, CodingDID: "F19E", Priority: 53},

	// Everything else.
	{Address: "05", Name: "Kessy", LongName: "Access/Start Authorization", CANID: "705", CodingSupported: true, CodingDID: "F19E", Priority: 60},
	{Address: "22", Name: "AWD", LongName: "All-Wheel Drive", CANID: "71E", CodingSupported: true, CodingDID: "F19E", Priority: 61},
	{Address: "25", Name: "Immobilizer", LongName: "Immobilizer", CANID: "71F", CodingSupported: true, CodingDID: "F19E", Priority: 62},
	{Address: "34", Name: "Level Control", LongName: "Air Suspension", CANID: "722", CodingSupported: true, CodingDID: "F19E", Priority: 63},
	{Address: "36", Name: "Driver Seat", LongName: "Driver Seat Memory", CANID: "724", CodingSupported: true, CodingDID: "F19E", Priority: 64},
	{Address: "38", Name: "Roof Electronics", LongName: "Roof Electronics", CANID: "726", CodingSupported: true, CodingDID: "F19E", Priority: 65},
	{Address: "65", Name: "Tire Pressure", LongName: "TPMS", CANID: "741", CodingSupported: true, CodingDID: "F19E", Priority: 66},
	{Address: "69", Name: "Trailer", LongName: "Trailer Module", CANID: "745", CodingSupported: true, CodingDID: "F19E", Priority: 67},
	{Address: "71", Name: "Battery", LongName: "Battery Management", CANID: "747", CodingSupported: true, CodingDID: "F19E", Priority: 68},
	{Address: "75", Name: "Telematics", LongName: "Telematics", CANID: "74B", CodingSupported: true, CodingDID: "F19E", Priority: 69},
	{Address: "77", Name: "Telephone", LongName: "Telephone Module", CANID: "74F", CodingSupported: true, CodingDID: "F19E", Priority: 70},
}

const vagBitSource = "ross-tech-wiki"

var vagCodingBits = []CatalogBit{
	// Module 17 - instrument cluster.
	{ModuleAddress: "17", ByteIndex: 0, BitIndex: 0, Name: "Needle Sweep", Description: "Gauge staging on startup", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 0, BitIndex: 1, Name: "Seatbelt Warning", Description: "Seatbelt warning chime", Category: models.CategorySafety, SafetyLevel: models.SafetyCaution, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 0, BitIndex: 3, Name: "Speed Warning", Description: "Speed warning enabled", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 1, BitIndex: 0, Name: "Digital Speedometer", Description: "Show digital speed in cluster", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 1, BitIndex: 2, Name: "Oil Temperature", Description: "Show oil temp in display", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 1, BitIndex: 4, Name: "Lap Timer", Description: "Enable lap timer function", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 2, BitIndex: 0, Name: "Fuel Display", Description: "Show remaining fuel in liters", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "17", ByteIndex: 2, BitIndex: 3, Name: "Distance Warning", Description: "Low fuel distance warning", Category: models.CategoryDisplay, SafetyLevel: models.SafetySafe, Source: vagBitSource},

	// Module 09 - central electronics (BCM).
	{ModuleAddress: "09", ByteIndex: 0, BitIndex: 0, Name: "Auto Lock", Description: "Lock doors when driving", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 0, BitIndex: 1, Name: "Auto Unlock", Description: "Unlock doors when parked", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 1, BitIndex: 0, Name: "Coming Home", Description: "Headlights stay on after exit", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 1, BitIndex: 1, Name: "Leaving Home", Description: "Headlights on when unlocking", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 2, BitIndex: 0, Name: "DRL Menu", Description: "DRL on/off option in settings", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 2, BitIndex: 4, Name: "Cornering Lights", Description: "Fog lights aim into turns", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 3, BitIndex: 0, Name: "Beep on Lock", Description: "Chirp when locking", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 3, BitIndex: 1, Name: "Beep on Unlock", Description: "Chirp when unlocking", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "09", ByteIndex: 4, BitIndex: 0, Name: "Mirror Fold", Description: "Mirrors fold on lock", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},

	// Module 46 - central comfort.
	{ModuleAddress: "46", ByteIndex: 0, BitIndex: 0, Name: "Comfort Windows", Description: "Windows from key fob", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "46", ByteIndex: 0, BitIndex: 1, Name: "Comfort Sunroof", Description: "Sunroof from key fob", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "46", ByteIndex: 0, BitIndex: 4, Name: "Rain Close", Description: "Close windows on rain sensor", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "46", ByteIndex: 1, BitIndex: 0, Name: "Hold Time", Description: "Key fob hold duration", Category: models.CategoryComfort, SafetyLevel: models.SafetySafe, Source: vagBitSource},

	// Module 55 - headlights.
	{ModuleAddress: "55", ByteIndex: 0, BitIndex: 0, Name: "DRL Active", Description: "Daytime running lights enabled", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "55", ByteIndex: 0, BitIndex: 2, Name: "DRL Brightness", Description: "DRL brightness level", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "55", ByteIndex: 1, BitIndex: 0, Name: "Auto Leveling", Description: "Automatic headlight leveling", Category: models.CategoryLighting, SafetyLevel: models.SafetyCaution, Source: vagBitSource},
	{ModuleAddress: "55", ByteIndex: 1, BitIndex: 4, Name: "Adaptive Light", Description: "Adaptive cornering lights", Category: models.CategoryLighting, SafetyLevel: models.SafetySafe, Source: vagBitSource},

	// Module 44 - steering assist.
	{ModuleAddress: "44", ByteIndex: 0, BitIndex: 0, Name: "Sport Steering", Description: "Sport steering weight", Category: models.CategoryPerformance, SafetyLevel: models.SafetySafe, Source: vagBitSource},
	{ModuleAddress: "44", ByteIndex: 0, BitIndex: 2, Name: "Lane Assist", Description: "Lane keeping assist", Category: models.CategorySafety, SafetyLevel: models.SafetyCaution, Source: vagBitSource},

	// Module 5F - infotainment.
	{ModuleAddress: "5F", ByteIndex: 0, BitIndex: 0, Name: "Video in Motion", Description: "Allow video while driving", Category: models.CategoryOther, SafetyLevel: models.SafetyCaution, Source: vagBitSource},
	{ModuleAddress: "5F", ByteIndex: 1, BitIndex: 0, Name: "Speed Lock", Description: "Lock features at speed", Category: models.CategorySafety, SafetyLevel: models.SafetyCaution, Source: vagBitSource},
}

var defaultPIDs = []CatalogPID{
	{PIDID: "boost_std_70", Name: "Boost Pressure", Manufacturer: manufacturer.Generic, Mode: "01", PID: "70", Formula: "(A*256+B)/32", Unit: "kPa", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 1},
	{PIDID: "boost_std_87", Name: "Intake Manifold Pressure Enhanced", Manufacturer: manufacturer.Generic, Mode: "01", PID: "87", Formula: "(A*256+B)/32", Unit: "kPa", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 2},
	{PIDID: "charge_air_temp_std", Name: "Charge Air Temp", Manufacturer: manufacturer.Generic, Mode: "01", PID: "77", Formula: "A-40", Unit: "°C", ByteCount: 1, Category: models.PIDCategoryEngine, Priority: 1},
	{PIDID: "oil_temp_std", Name: "Engine Oil Temp", Manufacturer: manufacturer.Generic, Mode: "01", PID: "5C", Formula: "A-40", Unit: "°C", ByteCount: 1, Category: models.PIDCategoryEngine, Priority: 1},
	{PIDID: "boost_uds_f40c", Name: "Boost Pressure UDS", Manufacturer: manufacturer.VAG, Mode: "22", PID: "F40C", Header: "7E0", Formula: "(A*256+B)/32", Unit: "mbar", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 3},
	{PIDID: "boost_uds_2270", Name: "Boost Pressure MQB", Manufacturer: manufacturer.VAG, Platform: "MQB", Mode: "22", PID: "2270", Header: "7E0", Formula: "(A*256+B)*0.01", Unit: "kPa", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 4},
	{PIDID: "boost_uds_31ce", Name: "Boost Pressure MLB", Manufacturer: manufacturer.VAG, Platform: "MLB", Mode: "22", PID: "31CE", Header: "7E0", Formula: "(A*256+B)*0.001", Unit: "bar", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 5},
	{PIDID: "oil_temp_uds_vag", Name: "Oil Temperature", Manufacturer: manufacturer.VAG, Mode: "22", PID: "2268", Header: "7E0", Formula: "A-40", Unit: "°C", ByteCount: 1, Category: models.PIDCategoryEngine, Priority: 2},
	{PIDID: "charge_air_temp_uds_vag", Name: "Charge Air Temp", Manufacturer: manufacturer.VAG, Platform: "MQB", Mode: "22", PID: "227A", Header: "7E0", Formula: "A-40", Unit: "°C", ByteCount: 1, Category: models.PIDCategoryEngine, Priority: 2},
	{PIDID: "dpf_soot_mass_vag", Name: "DPF Soot Mass", Manufacturer: manufacturer.VAG, Mode: "22", PID: "114F", Header: "7E0", Formula: "(A*256+B)*0.01", Unit: "g", ByteCount: 2, Category: models.PIDCategoryEngine, Priority: 5},
	{PIDID: "trans_temp_std", Name: "Transmission Temp", Manufacturer: manufacturer.Generic, Mode: "01", PID: "B4", Formula: "A-40", Unit: "°C", ByteCount: 1, Category: models.PIDCategoryTransmission, Priority: 1},
}
