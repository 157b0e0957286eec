package services

import (
	"errors"
	"strconv"
	"strings"

	"codetrack/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const SettingRegistrationOpen = "registration_open"

func GetSetting(db *gorm.DB, key string) (string, bool, error) {
	var setting models.AppSetting
	err := db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func SetSetting(tx *gorm.DB, key, value string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&models.AppSetting{Key: key, Value: value}).Error
}

// RegistrationOpen reports whether new accounts may be created. Without a
// stored value the default is open until the first admin account exists.
func RegistrationOpen(db *gorm.DB) (bool, error) {
	value, ok, err := GetSetting(db, SettingRegistrationOpen)
	if err != nil {
		return false, err
	}
	if !ok {
		var admins int64
		if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
			return false, err
		}
		return admins == 0, nil
	}
	return strings.EqualFold(value, "true"), nil
}

func SetRegistrationOpen(tx *gorm.DB, open bool) error {
	return SetSetting(tx, SettingRegistrationOpen, strconv.FormatBool(open))
}
