package domain

// Error types reported in logs and used to pick the HTTP status
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// ValidationMessages maps validator tags to the Turkish messages shown to users
var ValidationMessages = map[string]string{
	"required": "zorunludur",
	"email":    "geçerli bir email adresi olmalıdır",
	"url":      "geçerli bir URL olmalıdır",
	"max":      "izin verilen uzunluğu aşıyor",
	"min":      "çok kısa",
	"gte":      "negatif olamaz",
	"lte":      "izin verilen değeri aşıyor",
	"oneof":    "izin verilen değerlerden biri olmalıdır",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "geçersiz (" + tag + ")"
}

// User-facing messages. Internal details never reach the response body.
const (
	MsgNotFound         = "Kayıt bulunamadı"
	MsgValidationFailed = "Gönderilen veriler geçersiz"
	MsgInvalidBody      = "İstek gövdesi okunamadı"
	MsgInvalidID        = "Geçersiz kayıt numarası"
	MsgUnauthorized     = "Oturum açmanız gerekiyor"
	MsgForbidden        = "Bu işlem için yetkiniz yok"
	MsgInvalidLogin     = "Email veya şifre hatalı"
	MsgInternalWithID   = "Beklenmeyen bir hata oluştu. Hata kodu: %s"
	MsgCompanyExists    = "Bu firma zaten kayıtlı!"
	MsgEmailExists      = "Bu email adresi zaten kullanılıyor!"

	MsgCompanyDeleted     = "Firma başarıyla silindi"
	MsgOpportunityDeleted = "Fırsat başarıyla silindi"
	MsgActivityDeleted    = "Aktivite başarıyla silindi"
	MsgTaskDeleted        = "Görev başarıyla silindi"
	MsgUserDeleted        = "Kullanıcı başarıyla silindi"
)
