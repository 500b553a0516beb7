package utils

import (
	"fmt"
	"math/rand"

	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

var commonFirstNames = []string{
	"Antonio", "Manuel", "José", "Francisco", "David", "Juan", "Javier",
	"Daniel", "Carlos", "Miguel", "María", "Carmen", "Ana", "Isabel",
	"Laura", "Cristina", "Marta", "Lucía", "Elena", "Sara",
}
var commonSurnames = []string{
	"García", "Rodríguez", "González", "Fernández", "López", "Martínez",
	"Sánchez", "Pérez", "Gómez", "Martín", "Jiménez", "Ruiz", "Hernández",
	"Díaz", "Moreno", "Muñoz", "Álvarez", "Romero", "Alonso", "Gutiérrez",
}

func GenerateRandomGuardName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	surname1 := commonSurnames[rand.Intn(len(commonSurnames))]
	surname2 := commonSurnames[rand.Intn(len(commonSurnames))]
	return first + " " + surname1 + " " + surname2
}

var nieLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

// GenerateRandomDocumentID genera un DNI sintético con letra de control
// real, suficiente para datos de prueba.
func GenerateRandomDocumentID() string {
	number := rand.Intn(100000000)
	letter := nieLetters[number%23]
	return fmt.Sprintf("%08d%c", number, letter)
}

func GenerateRandomGuard() *domain.Guard {
	return &domain.Guard{
		FullName:   GenerateRandomGuardName(),
		DocumentID: GenerateRandomDocumentID(),
		IsActive:   true,
	}
}

var postNames = []string{
	"Control de accesos", "Recepción", "Vigilancia perimetral",
	"CCTV", "Muelle de carga", "Parking", "Puerta principal", "Rondas",
}

// GenerateRandomPost genera un puesto diurno o nocturno con turno de 12
// horas, que es el formato habitual de los servicios con patrón 4x4.
func GenerateRandomPost(installationID int64) *domain.Post {
	night := rand.Intn(2) == 0

	shiftStart := "06:00:00"
	shiftEnd := "18:00:00"
	if night {
		shiftStart = "18:00:00"
		shiftEnd = "06:00:00"
	}

	name := postNames[rand.Intn(len(postNames))]
	if night {
		name += " (noche)"
	}

	return &domain.Post{
		InstallationID: installationID,
		Name:           fmt.Sprintf("%s %03d", name, rand.Intn(1000)),
		ShiftStart:     shiftStart,
		ShiftEnd:       shiftEnd,
		RequiredSlots:  int32(rand.Intn(3) + 1),
		Weekdays:       GenerateRandomWeekdays(),
		IsActive:       true,
	}
}

// GenerateRandomWeekdays usa el barajado de Fisher-Yates para elegir un
// subconjunto aleatorio de días de la semana.
func GenerateRandomWeekdays() []int32 {
	days := []int32{1, 2, 3, 4, 5, 6, 7}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1

	chosen := days[:n]
	return chosen
}

func GenerateRandomPattern() *domain.Pattern {
	workDays := int32(rand.Intn(7) + 1)
	restDays := int32(rand.Intn(7) + 1)
	return &domain.Pattern{
		Code:     fmt.Sprintf("%dx%d-%03d", workDays, restDays, rand.Intn(1000)),
		WorkDays: workDays,
		RestDays: restDays,
	}
}
