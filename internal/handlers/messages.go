package handlers

// Messages shown to the user after a mutation
const (
	MessageCreateSuccess     = "Data created successfully!"
	MessageCreateFailed      = "Failed to create data!"
	MessageUpdateSuccess     = "Data updated successfully!"
	MessageUpdateFailed      = "Failed to update data!"
	MessageDeleteSuccess     = "Data deleted successfully!"
	MessageDeleteFailed      = "Failed to delete data!"
	MessageDeleteSelf        = "You can't delete yourself!"
	MessageForeignKey        = "Data can't be deleted because it is used by other data!"
	MessageNotFound          = "Data not found!"
	MessageValidationFailed  = "The given data was invalid."
	MessageImportFileMissing = "Please select CSV file."
	MessageImportExtension   = "Please choose file with .CSV extension."
	MessageImportFormat      = "Import failed! You are using the wrong CSV format. Please use the CSV template to import your data."
	MessageImportFailed      = "Import failed! The file could not be read."
)
