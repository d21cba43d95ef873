package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/lock"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/medbook/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/auth"
)

const (
	testSecret = "test-secret-for-handler-tests"
	testIssuer = "medbook-api"
)

type apiFixture struct {
	router  *gin.Engine
	patient uuid.UUID
	doctor  uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	appointments := memory.NewAppointmentRepository()
	windows := memory.NewScheduleRepository()
	log := zap.NewNop()
	cfg := config.SchedulingConfig{}

	availability := service.NewAvailabilityService(appointments, windows, cfg)
	scheduling := service.NewSchedulingService(
		appointments, availability, lock.NewKeyed(), nil, nil, log, cfg,
	)
	schedules := service.NewScheduleService(windows, appointments, log)

	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:         testSecret,
		AccessTokenTTL: 15 * time.Minute,
		Issuer:         testIssuer,
	})

	router := SetupRouter(RouterDeps{
		Appointments: NewAppointmentHandler(scheduling),
		Schedules:    NewScheduleHandler(schedules),
		JWTManager:   jwtManager,
	})

	return &apiFixture{
		router:  router,
		patient: uuid.New(),
		doctor:  uuid.New(),
	}
}

func mintToken(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()

	claims := struct {
		jwt.RegisteredClaims
		Email string `json:"email"`
		Role  string `json:"role"`
	}{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
		Email: "someone@example.com",
		Role:  string(role),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decoding response data: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/v1/appointments", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestBookEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	token := mintToken(t, f.patient, auth.RolePatient)

	body := gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    f.patient.String(),
		"date":      "2030-05-06",
		"startTime": "09:00",
		"endTime":   "09:30",
		"reason":    "checkup",
	}

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, rec, &created)
	if created.Status != "scheduled" {
		t.Errorf("status = %q, want scheduled", created.Status)
	}

	// overlapping second booking is rejected with 409
	body["startTime"] = "09:15"
	body["endTime"] = "09:45"
	rec = f.do(t, http.MethodPost, "/api/v1/appointments", token, body)
	if rec.Code != http.StatusConflict {
		t.Errorf("overlap status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestBookEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)
	token := mintToken(t, f.patient, auth.RolePatient)

	// binding failure: doctorId is not a uuid
	rec := f.do(t, http.MethodPost, "/api/v1/appointments", token, gin.H{
		"doctorId":  "nope",
		"userId":    f.patient.String(),
		"date":      "2030-05-06",
		"startTime": "09:00",
		"endTime":   "09:30",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad doctorId status = %d, want 400", rec.Code)
	}

	// semantic failure: inverted interval
	rec = f.do(t, http.MethodPost, "/api/v1/appointments", token, gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    f.patient.String(),
		"date":      "2030-05-06",
		"startTime": "10:00",
		"endTime":   "09:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted interval status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestPatientCannotBookForOthers(t *testing.T) {
	f := newAPIFixture(t)
	token := mintToken(t, f.patient, auth.RolePatient)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", token, gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    uuid.New().String(),
		"date":      "2030-05-06",
		"startTime": "09:00",
		"endTime":   "09:30",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	// an admin may book on behalf of anyone
	adminToken := mintToken(t, uuid.New(), auth.RoleAdmin)
	rec = f.do(t, http.MethodPost, "/api/v1/appointments", adminToken, gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    uuid.New().String(),
		"date":      "2030-05-06",
		"startTime": "10:00",
		"endTime":   "10:30",
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("admin booking status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCancelAndStatusEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	token := mintToken(t, f.patient, auth.RolePatient)

	rec := f.do(t, http.MethodPost, "/api/v1/appointments", token, gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    f.patient.String(),
		"date":      "2030-05-06",
		"startTime": "09:00",
		"endTime":   "09:30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, rec, &created)

	rec = f.do(t, http.MethodPatch, "/api/v1/appointments/"+created.ID+"/status", token, gin.H{"status": "confirmed"})
	if rec.Code != http.StatusOK {
		t.Errorf("set status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/appointments/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("cancel status = %d, want 200", rec.Code)
	}
	var cancelled struct {
		Status string `json:"status"`
	}
	decodeData(t, rec, &cancelled)
	if cancelled.Status != "cancelled" {
		t.Errorf("status after cancel = %q", cancelled.Status)
	}

	// unknown appointment
	rec = f.do(t, http.MethodDelete, "/api/v1/appointments/"+uuid.New().String(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cancel unknown status = %d, want 404", rec.Code)
	}

	// malformed id
	rec = f.do(t, http.MethodDelete, "/api/v1/appointments/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cancel malformed id status = %d, want 400", rec.Code)
	}
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	token := mintToken(t, f.patient, auth.RolePatient)

	path := "/api/v1/appointments/check-availability?doctor_id=" + f.doctor.String() +
		"&date=2030-05-06&start_time=09:00&end_time=09:30"

	rec := f.do(t, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var avail struct {
		Available bool `json:"available"`
	}
	decodeData(t, rec, &avail)
	if !avail.Available {
		t.Error("empty calendar reported unavailable")
	}

	rec = f.do(t, http.MethodGet, "/api/v1/appointments/check-availability?doctor_id=junk", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad doctor_id status = %d, want 400", rec.Code)
	}
}

func TestScheduleEndpointsRequireDoctorRole(t *testing.T) {
	f := newAPIFixture(t)
	patientToken := mintToken(t, f.patient, auth.RolePatient)
	doctorToken := mintToken(t, f.doctor, auth.RoleDoctor)

	windowBody := gin.H{
		"dayOfWeek": "monday",
		"startTime": "09:00",
		"endTime":   "12:00",
	}

	rec := f.do(t, http.MethodPost, "/api/v1/schedules/doctor/"+f.doctor.String(), patientToken, windowBody)
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient adding window status = %d, want 403", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/schedules/doctor/"+f.doctor.String(), doctorToken, windowBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("doctor adding window status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var window struct {
		ID               string `json:"id"`
		SlotDurationMins int    `json:"slotDurationMins"`
	}
	decodeData(t, rec, &window)
	if window.SlotDurationMins != 30 {
		t.Errorf("slot duration = %d, want default 30", window.SlotDurationMins)
	}

	// reads are open to any authenticated caller
	rec = f.do(t, http.MethodGet, "/api/v1/schedules/doctor/"+f.doctor.String()+"/slots?day=monday", patientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slots status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var slots []struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	}
	decodeData(t, rec, &slots)
	if len(slots) != 6 {
		t.Errorf("got %d slots, want 6", len(slots))
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/schedules/"+window.ID, doctorToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("remove window status = %d, want 200", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/api/v1/schedules/"+window.ID, doctorToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second removal status = %d, want 404", rec.Code)
	}
}

func TestFreeSlotsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	doctorToken := mintToken(t, f.doctor, auth.RoleDoctor)
	patientToken := mintToken(t, f.patient, auth.RolePatient)

	rec := f.do(t, http.MethodPost, "/api/v1/schedules/doctor/"+f.doctor.String(), doctorToken, gin.H{
		"dayOfWeek": "monday",
		"startTime": "09:00",
		"endTime":   "10:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add window status = %d (body %s)", rec.Code, rec.Body.String())
	}

	// 2030-05-06 is a monday; book the first slot
	rec = f.do(t, http.MethodPost, "/api/v1/appointments", patientToken, gin.H{
		"doctorId":  f.doctor.String(),
		"userId":    f.patient.String(),
		"date":      "2030-05-06",
		"startTime": "09:00",
		"endTime":   "09:30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/v1/schedules/doctor/"+f.doctor.String()+"/free-slots?date=2030-05-06", patientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("free-slots status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var free []struct {
		StartTime string `json:"startTime"`
	}
	decodeData(t, rec, &free)
	if len(free) != 1 || free[0].StartTime != "09:30" {
		t.Errorf("free slots = %+v, want only 09:30", free)
	}
}
